package zmachine

import "fmt"

func (e *Engine) dispatch0OP(opcode Opcode, v []uint16) (Signal, error) {
	switch opcode.Number {
	case 0: // rtrue
		return cont2(e.doReturn(1))
	case 1: // rfalse
		return cont2(e.doReturn(0))
	case 2: // print
		text, next, err := e.decodeText(e.pc)
		if err != nil {
			return Signal{}, err
		}
		e.pc = next
		return cont2(e.appendText(text))
	case 3: // print_ret
		text, next, err := e.decodeText(e.pc)
		if err != nil {
			return Signal{}, err
		}
		e.pc = next
		if err := e.appendText(text + "\n"); err != nil {
			return Signal{}, err
		}
		return cont2(e.doReturn(1))
	case 5: // save (V1-3 0OP form; handled at VAR-equivalent semantics)
		return e.opSave(nil)
	case 6: // restore (V1-3 0OP form)
		return e.opRestore(nil)
	case 7: // restart
		return Signal{Kind: SigRestart}, nil
	case 8: // ret_popped
		val, err := e.readVariable(0)
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.doReturn(val))
	case 9: // pop / catch (V5+ catch stores a token identifying this call frame)
		if e.Mem.Version >= 5 {
			return cont2(e.store(uint16(e.Calls.Depth())))
		}
		_, err := e.readVariable(0)
		return cont2(err)
	case 10: // quit
		return Signal{Kind: SigQuit}, nil
	case 11: // new_line
		return cont2(e.appendText("\n"))
	case 12: // show_status (V3 only)
		if e.Screen != nil {
			loc, score := e.statusLineText()
			e.Screen.StatusLine(loc, score)
		}
		return cont()
	case 13: // verify
		actual := e.Mem.Checksum()
		return cont2(e.handleBranch(actual == e.Mem.DeclaredChecksum))
	case 15: // piracy
		return cont2(e.handleBranch(true))
	}
	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unimplemented 0OP opcode"}
}

func cont2(err error) (Signal, error) {
	if err != nil {
		return Signal{}, err
	}
	return Signal{Kind: SigContinue}, nil
}

// statusLineText computes the V1-3 status-bar contents: the current
// location's short name, and either a score/moves pair or a time-of-day,
// depending on the game's declared status-bar kind.
func (e *Engine) statusLineText() (string, string) {
	locObj, err := e.readVariable(16) // global 0 holds the current room object
	if err != nil {
		return "", ""
	}
	name := ""
	if locObj != 0 {
		addr, err := e.Objects.ShortNameAddr(locObj)
		if err == nil {
			text, _, err := e.decodeText(addr)
			if err == nil {
				name = text
			}
		}
	}

	g1, _ := e.readVariable(17)
	g2, _ := e.readVariable(18)

	if e.Mem.Flags1&0b0000_0010 != 0 { // time-based status bar
		hours := g1 % 24
		minutes := g2
		suffix := "am"
		displayHours := hours
		if hours >= 12 {
			suffix = "pm"
		}
		if displayHours == 0 {
			displayHours = 12
		} else if displayHours > 12 {
			displayHours -= 12
		}
		return name, fmt.Sprintf("%d:%02d%s", displayHours, minutes, suffix)
	}

	return name, fmt.Sprintf("Score: %d Moves: %d", int16(g1), g2)
}
