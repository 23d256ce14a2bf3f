package zmachine

import "github.com/zifvm/zif/internal/zstring"

// Step decodes and executes exactly one instruction. It never blocks: when
// an opcode needs player input it fills in pendingInput, leaves the PC
// positioned so a later call can pick up where it left off, and returns
// SigSuspended. The caller (normally the Interpreter façade) must not call
// Step again until it has delivered that input.
func (e *Engine) Step() (Signal, error) {
	opcode, err := ParseOpcode(pcCursor{e}, e.Mem.Version)
	if err != nil {
		return Signal{}, err
	}

	values, err := e.evaluateAll(opcode.Operands)
	if err != nil {
		return Signal{}, err
	}

	switch opcode.Count {
	case OP0:
		return e.dispatch0OP(opcode, values)
	case OP1:
		return e.dispatch1OP(opcode, values)
	case OP2:
		return e.dispatch2OP(opcode, values)
	case VAR:
		return e.dispatchVAR(opcode, values)
	case EXT:
		return e.dispatchEXT(opcode, values)
	}

	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unreachable operand count"}
}

func cont() (Signal, error) { return Signal{Kind: SigContinue}, nil }

// decodeText decodes a Z-string starting at addr using the engine's
// current alphabets and abbreviation table, returning the text and the
// address immediately following it.
func (e *Engine) decodeText(addr uint32) (string, uint32, error) {
	var abbrevReader func(int) (uint32, error)
	if e.Mem.AbbreviationBase != 0 {
		abbrevReader = func(n int) (uint32, error) {
			w, err := e.Mem.GetWord(uint32(e.Mem.AbbreviationBase) + uint32(n)*2)
			if err != nil {
				return 0, err
			}
			return 2 * uint32(w), nil
		}
	}
	return zstring.Decode(addr, e.Mem.Version, e.Alphabets, e.Unicode, abbrevReader, e.Mem.GetByte)
}
