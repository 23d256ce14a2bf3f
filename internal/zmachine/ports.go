package zmachine

// Screen is the output port the engine writes text and display commands
// to. A host (the bubbletea TUI in cmd/zif, or a test harness) supplies a
// concrete implementation; the engine never assumes a terminal.
type Screen interface {
	Print(window int, text string)
	Erase(window int)
	EraseAll(unsplitToWindow0 bool)
	SplitWindow(lines uint16)
	SetWindow(window int)
	SetCursor(line, column uint16)
	SetTextStyle(style TextStyle)
	SetColour(foreground, background uint8)
	StatusLine(location string, score string)
}

// InputProcessor is the input port: the engine asks it for a line or a
// single character and the host supplies one, asynchronously, by calling
// back into the Interpreter's DeliverInput once it has one.
type InputProcessor interface {
	// RequestLine is called when the engine suspends on sread; the host
	// should eventually call Interpreter.DeliverInput with the typed line.
	RequestLine(maxLength int, preloaded string, timeoutTenths uint16)
	// RequestChar is called when the engine suspends on read_char.
	RequestChar(timeoutTenths uint16)
}

// Storage is the persistence port for save/restore, kept opaque to the
// engine: Interpreter.ExportSaveState/ImportSaveState produce and consume
// the bytes this interface reads and writes.
type Storage interface {
	WriteSave(name string, data []byte) error
	ReadSave(name string) ([]byte, error)
}

// TextStyle is a bitmask of the four style flags set_text_style accepts.
type TextStyle uint8

const (
	StyleRoman        TextStyle = 0
	StyleReverseVideo TextStyle = 1
	StyleBold         TextStyle = 2
	StyleItalic       TextStyle = 4
	StyleFixedPitch   TextStyle = 8
)
