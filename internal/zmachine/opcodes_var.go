package zmachine

import (
	"strconv"
	"time"

	"github.com/zifvm/zif/internal/ztable"
)

func (e *Engine) dispatchVAR(opcode Opcode, v []uint16) (Signal, error) {
	switch opcode.Number {
	case 0: // call / call_vs
		return cont2(e.doCall(v, RoutineFunction))

	case 1: // storew
		return cont2(e.Mem.SetWord(uint32(v[0])+2*uint32(v[1]), v[2]))

	case 2: // storeb
		return cont2(e.Mem.SetByte(uint32(v[0])+uint32(v[1]), uint8(v[2])))

	case 3: // put_prop
		return cont2(e.Objects.PutProperty(v[0], uint8(v[1]), v[2]))

	case 4: // sread / aread
		return e.beginRead(v)

	case 5: // print_char
		if v[0] != 0 {
			return cont2(e.appendText(e.zsciiToString(v[0])))
		}
		return cont()

	case 6: // print_num
		return cont2(e.appendText(strconv.Itoa(int(int16(v[0])))))

	case 7: // random
		n := int16(v[0])
		result := uint16(0)
		switch {
		case n < 0:
			e.rng.Seed(int64(n))
		case n == 0:
			e.rng.Seed(time.Now().UnixNano())
		default:
			result = uint16(e.rng.Int31n(int32(n))) + 1
		}
		return cont2(e.store(result))

	case 8: // push
		e.Values.Push(v[0])
		return cont()

	case 9: // pull
		// V6 has a second form, "pull stack -> (result)", where the single
		// operand is a user-stack table address rather than a destination
		// variable number; every other version's "pull (variable)" keeps
		// popping the implicit value stack into the named variable.
		if e.Mem.Version == 6 {
			val, err := e.PullUserStack(uint32(v[0]))
			if err != nil {
				return Signal{}, err
			}
			return cont2(e.store(val))
		}
		frame := e.Calls.Current()
		val, err := e.Values.Pop(frame.PreviousSP)
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.writeVariableIndirect(uint8(v[0]), val))

	case 10: // split_window
		if e.Screen != nil {
			e.Screen.SplitWindow(v[0])
		}
		return cont()

	case 11: // set_window
		e.currentWindow = int(v[0])
		if e.Screen != nil {
			e.Screen.SetWindow(int(v[0]))
		}
		return cont()

	case 12: // call_vs2
		return cont2(e.doCall(v, RoutineFunction))

	case 13: // erase_window
		if e.Screen == nil {
			return cont()
		}
		switch int16(v[0]) {
		case -1:
			e.Screen.EraseAll(true)
		case -2:
			e.Screen.EraseAll(false)
		default:
			e.Screen.Erase(int(v[0]))
		}
		return cont()

	case 15: // set_cursor
		if e.Screen != nil {
			e.Screen.SetCursor(v[0], v[1])
		}
		return cont()

	case 17: // set_text_style
		if e.Screen != nil {
			e.Screen.SetTextStyle(TextStyle(v[0]))
		}
		return cont()

	case 18: // buffer_mode
		// Output is never internally buffered by this engine, so there is
		// nothing to toggle; accepted for compatibility only.
		return cont()

	case 19: // output_stream
		return cont2(e.setOutputStream(v))

	case 21: // sound_effect
		// No sound is played; the opcode is accepted and ignored.
		return cont()

	case 22: // read_char
		return e.beginReadChar(v)

	case 23: // scan_table
		form := uint16(0x82)
		if len(v) == 4 {
			form = v[3]
		}
		addr, found, err := ztable.ScanTable(e.Mem, v[0], uint32(v[1]), v[2], form&0x7f)
		if err != nil {
			return Signal{}, err
		}
		if err := e.store(uint16(addr)); err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(found))

	case 24: // not
		return cont2(e.store(^v[0]))

	case 25: // call_vn
		return cont2(e.doCall(v, RoutineProcedure))

	case 26: // call_vn2
		return cont2(e.doCall(v, RoutineProcedure))

	case 27: // tokenise
		return cont2(e.opTokenise(v))

	case 29: // copy_table
		size := int16(v[2])
		length := uint32(size)
		safe := size >= 0
		if !safe {
			length = uint32(-size)
		}
		return cont2(ztable.CopyTable(e.Mem, uint32(v[0]), uint32(v[1]), length, safe))

	case 30: // print_table
		height := uint16(1)
		skip := uint16(0)
		if len(v) > 2 {
			height = v[2]
		}
		if len(v) > 3 {
			skip = v[3]
		}
		text, err := ztable.PrintTable(e.Mem, uint32(v[0]), v[1], height, skip)
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.appendText(text))

	case 31: // check_arg_count
		frame := e.Calls.Current()
		return cont2(e.handleBranch(int(v[0]) <= frame.ArgCount))
	}
	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unimplemented VAR opcode"}
}

// setOutputStream implements output_stream: positive numbers enable a
// stream, negative numbers disable it, and stream 3 additionally carries
// the target address to begin a memory capture (on enable) or pops the
// innermost one (on -3).
func (e *Engine) setOutputStream(v []uint16) error {
	stream := int16(v[0])
	switch stream {
	case 1, -1:
		e.streamsEnabled[StreamScreen] = stream > 0
	case 2, -2:
		e.streamsEnabled[StreamTranscript] = stream > 0
	case 3:
		if len(v) < 2 {
			return &ExecutionError{Message: "output_stream 3 requires a target address"}
		}
		e.PushMemoryStream(uint32(v[1]))
	case -3:
		return e.PopMemoryStream()
	case 4, -4:
		e.streamsEnabled[StreamCommandScript] = stream > 0
	}
	return nil
}
