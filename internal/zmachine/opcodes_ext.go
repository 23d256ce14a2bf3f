package zmachine

func (e *Engine) dispatchEXT(opcode Opcode, v []uint16) (Signal, error) {
	switch opcode.Number {
	case 0: // save
		return e.opSave(nil)

	case 1: // restore
		return e.opRestore(nil)

	case 2: // log_shift
		places := int16(v[1])
		var result uint16
		if places >= 0 {
			result = v[0] << uint16(places)
		} else {
			result = v[0] >> uint16(-places)
		}
		return cont2(e.store(result))

	case 3: // art_shift
		places := int16(v[1])
		var result uint16
		if places >= 0 {
			result = uint16(int16(v[0]) << uint16(places))
		} else {
			result = uint16(int16(v[0]) >> uint16(-places))
		}
		return cont2(e.store(result))

	case 9: // save_undo
		e.SaveUndo()
		return cont2(e.store(1))

	case 10: // restore_undo
		if e.RestoreUndo() {
			return cont2(e.store(2))
		}
		return cont2(e.store(0))

	case 11: // print_unicode
		if r, ok := e.Unicode.ToRune(v[0]); ok {
			return cont2(e.appendText(string(r)))
		}
		if v[0] < 128 {
			return cont2(e.appendText(string(rune(v[0]))))
		}
		return cont()

	case 12: // check_unicode
		result := uint16(0)
		if _, ok := e.Unicode.ToRune(v[0]); ok || v[0] < 128 {
			result = 0b11 // this engine can both print and (trivially) accept the character
		}
		return cont2(e.store(result))

	case 13: // set_true_colour
		if e.Screen != nil {
			e.Screen.SetColour(uint8(v[0]), uint8(v[1]))
		}
		return cont()
	}
	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unimplemented EXT opcode"}
}
