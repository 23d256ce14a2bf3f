package zmachine

func (e *Engine) dispatch1OP(opcode Opcode, v []uint16) (Signal, error) {
	switch opcode.Number {
	case 0: // jz
		return cont2(e.handleBranch(v[0] == 0))

	case 1: // get_sibling
		sibling, err := e.Objects.Sibling(v[0])
		if err != nil {
			return Signal{}, err
		}
		if err := e.store(sibling); err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(sibling != 0))

	case 2: // get_child
		child, err := e.Objects.Child(v[0])
		if err != nil {
			return Signal{}, err
		}
		if err := e.store(child); err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(child != 0))

	case 3: // get_parent
		parent, err := e.Objects.Parent(v[0])
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(parent))

	case 4: // get_prop_len
		length, err := e.Objects.GetPropertyLength(uint32(v[0]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(uint16(length)))

	case 5: // inc
		return cont2(e.incDecVariable(uint8(v[0]), 1))

	case 6: // dec
		return cont2(e.incDecVariable(uint8(v[0]), -1))

	case 7: // print_addr
		text, _, err := e.decodeText(uint32(v[0]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.appendText(text))

	case 8: // call_1s
		return cont2(e.doCall(v, RoutineFunction))

	case 9: // remove_obj
		return cont2(e.Objects.RemoveObject(v[0]))

	case 10: // print_obj
		addr, err := e.Objects.ShortNameAddr(v[0])
		if err != nil {
			return Signal{}, err
		}
		text, _, err := e.decodeText(addr)
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.appendText(text))

	case 11: // ret
		return cont2(e.doReturn(v[0]))

	case 12: // jump
		offset := int16(v[0])
		e.pc = uint32(int64(e.pc) + int64(offset) - 2)
		return cont()

	case 13: // print_paddr
		addr := e.Mem.UnpackString(v[0])
		text, _, err := e.decodeText(addr)
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.appendText(text))

	case 14: // load
		val, err := e.readVariableIndirect(uint8(v[0]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(val))

	case 15: // not (V1-4) / call_1n (V5+)
		if e.Mem.Version < 5 {
			return cont2(e.store(^v[0]))
		}
		return cont2(e.doCall(v, RoutineProcedure))
	}
	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unimplemented 1OP opcode"}
}

func (e *Engine) incDecVariable(variable uint8, delta int16) error {
	cur, err := e.readVariableIndirect(variable)
	if err != nil {
		return err
	}
	return e.writeVariableIndirect(variable, uint16(int16(cur)+delta))
}
