// Package zmachine implements the suspendable Z-machine execution core:
// opcode decoding and dispatch, the object tree, variable/stack access,
// and the save/restore and output-stream machinery around it.
package zmachine

import (
	"math/rand"
	"time"

	"github.com/zifvm/zif/internal/dictionary"
	"github.com/zifvm/zif/internal/zcore"
	"github.com/zifvm/zif/internal/zobject"
	"github.com/zifvm/zif/internal/zstring"
)

// Output stream numbers, per the output_stream opcode.
const (
	StreamScreen        = 1
	StreamTranscript    = 2
	StreamMemory        = 3
	StreamCommandScript = 4
)

// Engine is one running story: memory, object tree, dictionary, call
// stack, value stack and the stream/window state the opcodes mutate. It
// has no notion of a host event loop; Step runs exactly one instruction
// and returns a Signal describing what happened.
type Engine struct {
	Mem        *zcore.Memory
	Objects    *zobject.Table
	Dict       *dictionary.Dictionary
	Alphabets  zstring.Alphabets
	Unicode    zstring.UnicodeTable
	Calls      *CallStack
	Values     *ValueStack
	rng *rand.Rand

	pc uint32

	Screen  Screen
	Input   InputProcessor
	Storage Storage

	// SaveName is the filename save/restore opcodes default to when a
	// story doesn't let the player pick one (this engine has no prompt of
	// its own; a host that wants a different name assigns SaveName
	// directly).
	SaveName string

	streamsEnabled    [5]bool // index 1..4 used
	memoryStreamStack []memoryStreamFrame
	transcript        []byte
	currentWindow     int

	pendingInput InputRequest
	undoSlot     *Snapshot
	warnings     []Warning
}

// memoryStreamFrame tracks one nested output_stream 3 redirection: base is
// the address of the 2-byte length word the standard reserves at the
// target, and cursor is where the next character will be written.
type memoryStreamFrame struct {
	base   uint32
	cursor uint32
}

// NewEngine constructs an engine over an already-loaded story image. The
// caller is responsible for having stamped header capability flags via
// Mem.InitCapabilities first.
func NewEngine(mem *zcore.Memory) *Engine {
	e := &Engine{
		Mem:       mem,
		Objects:   zobject.NewTable(mem, uint32(mem.ObjectTableBase), mem.Version),
		Alphabets: zstring.DefaultAlphabets,
		Unicode:   zstring.NewDefaultUnicodeTable(),
		Calls:     NewCallStack(),
		Values:    NewValueStack(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.streamsEnabled[StreamScreen] = true
	return e
}

// Start loads custom alphabets/unicode tables (if any), parses the
// dictionary, pushes the outermost call frame at the header's initial PC,
// and positions the engine to execute its first instruction.
func (e *Engine) Start() error {
	if e.Mem.AlphabetTableBase != 0 {
		alphabets, err := zstring.LoadAlphabets(uint32(e.Mem.AlphabetTableBase), e.Mem.GetByte)
		if err != nil {
			return err
		}
		e.Alphabets = alphabets
	}
	if e.Mem.ExtensionTableBase != 0 {
		unicodeAddr, err := e.unicodeTableAddr()
		if err != nil {
			return err
		}
		if unicodeAddr != 0 {
			table, err := zstring.LoadCustomUnicodeTable(unicodeAddr, e.Mem.GetByte, e.Mem.GetWord)
			if err != nil {
				return err
			}
			e.Unicode = table
		}
	}

	dict, err := dictionary.Parse(e.Mem, uint32(e.Mem.DictionaryBase), e.Mem.Version)
	if err != nil {
		return err
	}
	e.Dict = dict

	e.Calls.Push(Frame{
		ReturnPC:   0,
		Type:       RoutineProcedure,
		PreviousSP: 0,
	})
	e.pc = uint32(e.Mem.InitialPC)
	if e.Mem.Version == 6 {
		// V6 initial PC is itself a packed routine address per the header.
		e.pc = e.Mem.UnpackRoutine(e.Mem.InitialPC)
	}
	return nil
}

func (e *Engine) unicodeTableAddr() (uint32, error) {
	w, err := e.Mem.GetWord(uint32(e.Mem.ExtensionTableBase) + 6)
	if err != nil {
		return 0, nil // extension table too short to have a unicode entry
	}
	return uint32(w), nil
}

// pcCursor adapts Engine to the opcode decoder's byteReader interface.
type pcCursor struct{ e *Engine }

func (c pcCursor) readByte() (uint8, error) {
	b, err := c.e.Mem.GetByte(c.e.pc)
	if err != nil {
		return 0, err
	}
	c.e.pc++
	return b, nil
}

func (c pcCursor) readWord() (uint16, error) {
	w, err := c.e.Mem.GetWord(c.e.pc)
	if err != nil {
		return 0, err
	}
	c.e.pc += 2
	return w, nil
}

func (c pcCursor) pc() uint32 { return c.e.pc }

// PC exposes the current program counter, for diagnostics and save state.
func (e *Engine) PC() uint32 { return e.pc }

// SetPC repositions the program counter, used by jump/call/ret and by
// restore.
func (e *Engine) SetPC(addr uint32) { e.pc = addr }

// readVariable resolves a variable number per the standard: 0 is the
// value-stack top (popped), 1-15 are the current frame's locals, 16-255
// are globals in the global variable table.
func (e *Engine) readVariable(n uint8) (uint16, error) {
	if n == 0 {
		frame := e.Calls.Current()
		return e.Values.Pop(frame.PreviousSP)
	}
	if n < 16 {
		frame := e.Calls.Current()
		if int(n-1) >= frame.NumLocals {
			return 0, &ExecutionError{PC: e.pc, Message: "read of undeclared local variable"}
		}
		return frame.Locals[n-1], nil
	}
	addr := uint32(e.Mem.GlobalVariableBase) + uint32(n-16)*2
	return e.Mem.GetWord(addr)
}

// writeVariable is the dual of readVariable.
func (e *Engine) writeVariable(n uint8, value uint16) error {
	if n == 0 {
		e.Values.Push(value)
		return nil
	}
	if n < 16 {
		frame := e.Calls.Current()
		if int(n-1) >= frame.NumLocals {
			return &ExecutionError{PC: e.pc, Message: "write to undeclared local variable"}
		}
		frame.Locals[n-1] = value
		return nil
	}
	addr := uint32(e.Mem.GlobalVariableBase) + uint32(n-16)*2
	return e.Mem.SetWord(addr, value)
}

// readVariableIndirect resolves a variable reference for the seven
// opcodes the standard singles out (inc, dec, inc_chk, dec_chk, load,
// store, pull): an indirect reference to variable 0 peeks the top of the
// value stack in place rather than popping it.
func (e *Engine) readVariableIndirect(n uint8) (uint16, error) {
	if n == 0 {
		frame := e.Calls.Current()
		return e.Values.Peek(frame.PreviousSP)
	}
	return e.readVariable(n)
}

// writeVariableIndirect is the dual of readVariableIndirect: an indirect
// reference to variable 0 overwrites the top of the value stack in place
// rather than pushing a new one.
func (e *Engine) writeVariableIndirect(n uint8, value uint16) error {
	if n == 0 {
		frame := e.Calls.Current()
		return e.Values.ReplaceTop(frame.PreviousSP, value)
	}
	return e.writeVariable(n, value)
}

// evaluate resolves an operand's actual 16-bit value, reading a variable
// operand in the process (which pops the stack for operand 0, so operands
// must be evaluated strictly in left-to-right order).
func (e *Engine) evaluate(op Operand) (uint16, error) {
	switch op.Type {
	case typeVariable:
		return e.readVariable(uint8(op.Value))
	default:
		return op.Value, nil
	}
}

func (e *Engine) evaluateAll(operands []Operand) ([]uint16, error) {
	values := make([]uint16, len(operands))
	for i, op := range operands {
		v, err := e.evaluate(op)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// readStoreVar reads the single byte following an instruction that stores
// a result, per the standard's placement of that byte immediately after
// the operands.
func (e *Engine) readStoreVar() (uint8, error) {
	b, err := e.Mem.GetByte(e.pc)
	if err != nil {
		return 0, err
	}
	e.pc++
	return b, nil
}

// store writes an opcode's result to its trailing store-variable byte.
func (e *Engine) store(value uint16) error {
	v, err := e.readStoreVar()
	if err != nil {
		return err
	}
	return e.writeVariable(v, value)
}

// handleBranch reads the branch byte(s) following an instruction and, if
// condition matches the branch's polarity, performs the jump (or the
// special 0/1 encodings for rfalse/rtrue).
func (e *Engine) handleBranch(condition bool) error {
	b1, err := e.Mem.GetByte(e.pc)
	if err != nil {
		return err
	}
	e.pc++

	polarity := b1&0x80 != 0
	var offset int32

	if b1&0x40 != 0 {
		// Short form: 6-bit unsigned offset in the low bits of this byte.
		offset = int32(b1 & 0x3f)
	} else {
		b2, err := e.Mem.GetByte(e.pc)
		if err != nil {
			return err
		}
		e.pc++
		raw := uint16(b1&0x3f)<<8 | uint16(b2)
		if raw&0x2000 != 0 {
			// 14-bit signed offset, sign-extend.
			offset = int32(raw) - 0x4000
		} else {
			offset = int32(raw)
		}
	}

	if condition != polarity {
		return nil
	}

	switch offset {
	case 0:
		return e.doReturn(0)
	case 1:
		return e.doReturn(1)
	default:
		e.pc = uint32(int64(e.pc) + int64(offset) - 2)
		return nil
	}
}

// doReturn pops the current call frame, truncates the value stack back to
// where the routine started, restores the saved PC, and stores the
// return value if the caller expected one.
func (e *Engine) doReturn(value uint16) error {
	frame := e.Calls.Pop()
	e.Values.TruncateTo(frame.PreviousSP)
	e.pc = frame.ReturnPC
	if frame.Type == RoutineFunction {
		return e.writeVariable(frame.ResultVar, value)
	}
	return nil
}

// appendText routes decoded/printed text to whichever output streams are
// currently active: the screen, the transcript, and/or a memory capture
// buffer (stream 3 redirects everything else while active, per the
// standard).
func (e *Engine) appendText(text string) error {
	if n := len(e.memoryStreamStack); n > 0 {
		return e.writeToMemoryStream(text)
	}
	if e.streamsEnabled[StreamScreen] && e.Screen != nil {
		e.Screen.Print(e.currentWindow, text)
	}
	if e.streamsEnabled[StreamTranscript] {
		e.transcript = append(e.transcript, text...)
	}
	return nil
}

func (e *Engine) writeToMemoryStream(text string) error {
	top := len(e.memoryStreamStack) - 1
	frame := &e.memoryStreamStack[top]
	for i := 0; i < len(text); i++ {
		if err := e.Mem.SetByte(frame.cursor, text[i]); err != nil {
			return err
		}
		frame.cursor++
	}
	return nil
}

// warn records a non-fatal anomaly without stopping execution, for
// conditions the standard leaves undefined but that a well-behaved
// interpreter should survive rather than abort on — mirroring the
// teacher's warnOnce reporting for things like an empty-stack pop.
func (e *Engine) warn(message string) {
	e.warnings = append(e.warnings, Warning{PC: e.pc, Message: message})
}

// Warnings drains and returns every non-fatal anomaly recorded since the
// last call, for a host that wants to surface them (e.g. to stderr)
// without aborting the story.
func (e *Engine) Warnings() []Warning {
	w := e.warnings
	e.warnings = nil
	return w
}

// PushMemoryStream begins redirecting text output to addr, per
// "output_stream 3 addr": a 2-byte length word is reserved at addr and
// patched in by PopMemoryStream once the redirection ends.
func (e *Engine) PushMemoryStream(addr uint32) {
	e.memoryStreamStack = append(e.memoryStreamStack, memoryStreamFrame{base: addr, cursor: addr + 2})
}

// PopMemoryStream ends the innermost memory-stream redirection, writing
// back the number of characters captured into its reserved length word.
func (e *Engine) PopMemoryStream() error {
	if len(e.memoryStreamStack) == 0 {
		e.warn("output_stream -3 with no active memory-stream redirection")
		return nil
	}
	top := len(e.memoryStreamStack) - 1
	frame := e.memoryStreamStack[top]
	e.memoryStreamStack = e.memoryStreamStack[:top]
	length := uint16(frame.cursor - frame.base - 2)
	return e.Mem.SetWord(frame.base, length)
}
