package zmachine

import (
	"strings"

	"github.com/zifvm/zif/internal/dictionary"
	"github.com/zifvm/zif/internal/zstring"
)

// beginRead starts the sread/aread opcode: it records everything needed to
// resume once the host supplies a line of text and returns SigSuspended
// instead of blocking, per this engine's explicit-signal suspension model.
func (e *Engine) beginRead(v []uint16) (Signal, error) {
	textBufferAddr := uint32(v[0])
	var parseBufferAddr uint32
	if len(v) > 1 {
		parseBufferAddr = uint32(v[1])
	}
	var timeout uint16
	var interrupt uint16
	if len(v) > 2 {
		timeout = v[2]
	}
	if len(v) > 3 {
		interrupt = v[3]
	}

	maxLen, err := e.Mem.GetByte(textBufferAddr)
	if err != nil {
		return Signal{}, err
	}

	var preloaded string
	if e.Mem.Version >= 5 {
		existing, err := e.Mem.GetByte(textBufferAddr + 1)
		if err != nil {
			return Signal{}, err
		}
		if existing > 0 {
			buf := make([]byte, existing)
			for i := uint8(0); i < existing; i++ {
				b, err := e.Mem.GetByte(textBufferAddr + 2 + uint32(i))
				if err != nil {
					return Signal{}, err
				}
				buf[i] = b
			}
			preloaded = string(buf)
		}
	}

	var resultVar uint8
	hasResultVar := false
	if e.Mem.Version >= 5 {
		resultVar, err = e.readStoreVar()
		if err != nil {
			return Signal{}, err
		}
		hasResultVar = true
	}

	e.pendingInput = InputRequest{
		active:           true,
		Kind:             InputLine,
		MaxLength:        int(maxLen),
		Preloaded:        preloaded,
		TimeoutTenths:    timeout,
		textBufferAddr:   textBufferAddr,
		parseBufferAddr:  parseBufferAddr,
		resultVar:        resultVar,
		hasResultVar:     hasResultVar,
		interruptRoutine: interrupt,
	}
	if e.Input != nil {
		e.Input.RequestLine(int(maxLen), preloaded, timeout)
	}
	return Signal{Kind: SigSuspended, Input: e.pendingInput}, nil
}

// beginReadChar starts the read_char opcode.
func (e *Engine) beginReadChar(v []uint16) (Signal, error) {
	var timeout, interrupt uint16
	if len(v) > 1 {
		timeout = v[1]
	}
	if len(v) > 2 {
		interrupt = v[2]
	}
	resultVar, err := e.readStoreVar()
	if err != nil {
		return Signal{}, err
	}
	e.pendingInput = InputRequest{
		active:           true,
		Kind:             InputChar,
		TimeoutTenths:    timeout,
		resultVar:        resultVar,
		hasResultVar:     true,
		interruptRoutine: interrupt,
	}
	if e.Input != nil {
		e.Input.RequestChar(timeout)
	}
	return Signal{Kind: SigSuspended, Input: e.pendingInput}, nil
}

// PendingInput returns the input request the engine last suspended on, for
// a host that wants to inspect it after Step returns SigSuspended without
// threading the Signal value through separately.
func (e *Engine) PendingInput() InputRequest { return e.pendingInput }

// DeliverLine completes a suspended sread/aread with the player's typed
// line: it lowercases and ZSCII-clamps the text into the story's text
// buffer, tokenises it into the parse buffer (if one was given), and
// stores the terminating character for V5+. Calling it without a pending
// line request is a host bug.
func (e *Engine) DeliverLine(text string) error {
	req := e.pendingInput
	if !req.active || req.Kind != InputLine {
		return &ExecutionError{Message: "DeliverLine called without a pending line-input request"}
	}

	text = strings.ToLower(text)
	if len(text) > req.MaxLength {
		text = text[:req.MaxLength]
	}

	textBase := req.textBufferAddr + 1
	if e.Mem.Version >= 5 {
		textBase++
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		zscii := uint8(' ')
		switch {
		case ch >= 32 && ch <= 126:
			zscii = ch
		default:
			if code, ok := e.Unicode.FromRune(rune(ch)); ok {
				zscii = uint8(code)
			}
		}
		if err := e.Mem.SetByte(textBase+uint32(i), zscii); err != nil {
			return err
		}
	}

	if e.Mem.Version >= 5 {
		if err := e.Mem.SetByte(req.textBufferAddr+1, uint8(len(text))); err != nil {
			return err
		}
	} else {
		if err := e.Mem.SetByte(textBase+uint32(len(text)), 0); err != nil {
			return err
		}
	}

	if req.parseBufferAddr != 0 {
		if err := e.tokeniseInto(text, req.textBufferAddr, req.parseBufferAddr, e.Dict, false); err != nil {
			return err
		}
	}

	if req.hasResultVar {
		if err := e.writeVariable(req.resultVar, 13); err != nil {
			return err
		}
	}

	e.pendingInput = InputRequest{}
	return nil
}

// DeliverChar completes a suspended read_char with a single typed ZSCII
// character.
func (e *Engine) DeliverChar(ch uint16) error {
	req := e.pendingInput
	if !req.active || req.Kind != InputChar {
		return &ExecutionError{Message: "DeliverChar called without a pending character-input request"}
	}
	if err := e.writeVariable(req.resultVar, ch); err != nil {
		return err
	}
	e.pendingInput = InputRequest{}
	return nil
}

// DeliverTimeout runs the input request's interrupt routine (if any) when
// the host's timer fires before the player answers. If the routine returns
// non-zero the read is abandoned with no text accepted, per the standard;
// otherwise the caller should keep waiting (Step must not be called again
// until DeliverLine/DeliverChar or another DeliverTimeout resolves it).
func (e *Engine) DeliverTimeout() (Signal, error) {
	req := e.pendingInput
	if !req.active {
		return Signal{}, &ExecutionError{Message: "DeliverTimeout called without a pending input request"}
	}
	if req.interruptRoutine == 0 {
		return Signal{Kind: SigSuspended, Input: req}, nil
	}

	result, err := e.InvokeRoutine(req.interruptRoutine, nil)
	if err != nil {
		return Signal{}, err
	}
	if result == 0 {
		return Signal{Kind: SigSuspended, Input: req}, nil
	}

	if req.Kind == InputLine {
		if err := e.Mem.SetByte(req.textBufferAddr+1, 0); err != nil {
			return Signal{}, err
		}
	}
	if req.hasResultVar {
		if err := e.writeVariable(req.resultVar, 0); err != nil {
			return Signal{}, err
		}
	}
	e.pendingInput = InputRequest{}
	return cont()
}

// opTokenise implements the tokenise opcode: split text already sitting in
// a buffer into dictionary words, optionally against a story-supplied
// dictionary other than the story's own.
func (e *Engine) opTokenise(v []uint16) error {
	textAddr := uint32(v[0])
	parseAddr := uint32(v[1])

	dict := e.Dict
	if len(v) > 2 && v[2] != 0 {
		d, err := dictionary.Parse(e.Mem, uint32(v[2]), e.Mem.Version)
		if err != nil {
			return err
		}
		dict = d
	}

	textBase := textAddr + 1
	var length int
	if e.Mem.Version >= 5 {
		textBase++
		n, err := e.Mem.GetByte(textAddr + 1)
		if err != nil {
			return err
		}
		length = int(n)
	} else {
		for {
			b, err := e.Mem.GetByte(textBase + uint32(length))
			if err != nil {
				return err
			}
			if b == 0 {
				break
			}
			length++
		}
	}

	buf := make([]byte, length)
	for i := 0; i < length; i++ {
		b, err := e.Mem.GetByte(textBase + uint32(i))
		if err != nil {
			return err
		}
		buf[i] = b
	}

	skipUnknown := len(v) > 3 && v[3] != 0
	return e.tokeniseInto(string(buf), textAddr, parseAddr, dict, skipUnknown)
}

// tokeniseInto writes the dictionary/parse-buffer record the standard
// specifies: a count byte followed by, for each recognized word, its
// dictionary address, length, and offset from the start of the text
// buffer. When skipUnknown is set (the tokenise opcode's optional 4th
// operand), a word record whose dictionary lookup fails is left
// untouched instead of being overwritten with a zero address, so a
// caller can pre-seed the parse buffer with its own guesses.
func (e *Engine) tokeniseInto(text string, textAddr, parseAddr uint32, dict *dictionary.Dictionary, skipUnknown bool) error {
	if dict == nil {
		return nil
	}

	textBase := textAddr + 1
	if e.Mem.Version >= 5 {
		textBase++
	}

	tokens := dictionary.Tokenise(text, dict)
	maxWords, err := e.Mem.GetByte(parseAddr)
	if err != nil {
		return err
	}
	count := len(tokens)
	if count > int(maxWords) {
		count = int(maxWords)
	}
	if err := e.Mem.SetByte(parseAddr+1, uint8(count)); err != nil {
		return err
	}

	cur := parseAddr + 2
	for i := 0; i < count; i++ {
		tok := tokens[i]
		coded := zstring.Encode(tok.Text, e.Alphabets, dict.WordLen())
		entry, found := dict.Find(coded)

		if !found && skipUnknown {
			cur += 4
			continue
		}
		var addr uint32
		if found {
			addr = entry.Addr
		}
		if err := e.Mem.SetWord(cur, uint16(addr)); err != nil {
			return err
		}
		if err := e.Mem.SetByte(cur+2, uint8(tok.Length)); err != nil {
			return err
		}
		offset := (textBase - textAddr) + uint32(tok.Start)
		if err := e.Mem.SetByte(cur+3, uint8(offset)); err != nil {
			return err
		}
		cur += 4
	}
	return nil
}

// zsciiToString converts a single ZSCII code (as used by print_char) to its
// display text, consulting the unicode translation table for codes in
// 155-223 and passing ASCII through unchanged.
func (e *Engine) zsciiToString(code uint16) string {
	switch {
	case code == 13:
		return "\n"
	case code >= 32 && code <= 126:
		return string(rune(code))
	default:
		if r, ok := e.Unicode.ToRune(code); ok {
			return string(r)
		}
		return ""
	}
}
