package zmachine

func (e *Engine) dispatch2OP(opcode Opcode, v []uint16) (Signal, error) {
	switch opcode.Number {
	case 1: // je - matches if v[0] equals any of the remaining operands
		branch := false
		for _, b := range v[1:] {
			if v[0] == b {
				branch = true
				break
			}
		}
		return cont2(e.handleBranch(branch))

	case 2: // jl
		return cont2(e.handleBranch(int16(v[0]) < int16(v[1])))

	case 3: // jg
		return cont2(e.handleBranch(int16(v[0]) > int16(v[1])))

	case 4: // dec_chk
		variable := uint8(v[0])
		cur, err := e.readVariableIndirect(variable)
		if err != nil {
			return Signal{}, err
		}
		newVal := int16(cur) - 1
		if err := e.writeVariableIndirect(variable, uint16(newVal)); err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(newVal < int16(v[1])))

	case 5: // inc_chk
		variable := uint8(v[0])
		cur, err := e.readVariableIndirect(variable)
		if err != nil {
			return Signal{}, err
		}
		newVal := int16(cur) + 1
		if err := e.writeVariableIndirect(variable, uint16(newVal)); err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(newVal > int16(v[1])))

	case 6: // jin
		parent, err := e.Objects.Parent(v[0])
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(parent == v[1]))

	case 7: // test
		return cont2(e.handleBranch(v[0]&v[1] == v[1]))

	case 8: // or
		return cont2(e.store(v[0] | v[1]))

	case 9: // and
		return cont2(e.store(v[0] & v[1]))

	case 10: // test_attr
		set, err := e.Objects.TestAttribute(v[0], uint8(v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.handleBranch(set))

	case 11: // set_attr
		return cont2(e.Objects.SetAttribute(v[0], uint8(v[1])))

	case 12: // clear_attr
		return cont2(e.Objects.ClearAttribute(v[0], uint8(v[1])))

	case 13: // store
		return cont2(e.writeVariableIndirect(uint8(v[0]), v[1]))

	case 14: // insert_obj
		return cont2(e.Objects.InsertObject(v[0], v[1]))

	case 15: // loadw
		w, err := e.Mem.GetWord(uint32(v[0] + 2*v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(w))

	case 16: // loadb
		b, err := e.Mem.GetByte(uint32(v[0] + v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(uint16(b)))

	case 17: // get_prop
		val, err := e.Objects.GetProperty(v[0], uint8(v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(val))

	case 18: // get_prop_addr
		addr, err := e.Objects.GetPropertyAddr(v[0], uint8(v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(uint16(addr)))

	case 19: // get_next_prop
		next, err := e.Objects.GetNextProperty(v[0], uint8(v[1]))
		if err != nil {
			return Signal{}, err
		}
		return cont2(e.store(uint16(next)))

	case 20: // add
		return cont2(e.store(uint16(int16(v[0]) + int16(v[1]))))

	case 21: // sub
		return cont2(e.store(uint16(int16(v[0]) - int16(v[1]))))

	case 22: // mul
		return cont2(e.store(uint16(int16(v[0]) * int16(v[1]))))

	case 23: // div
		if int16(v[1]) == 0 {
			return Signal{}, &ExecutionError{PC: opcode.PC, Opcode: "div", Message: "division by zero"}
		}
		return cont2(e.store(uint16(int16(v[0]) / int16(v[1]))))

	case 24: // mod
		if int16(v[1]) == 0 {
			return Signal{}, &ExecutionError{PC: opcode.PC, Opcode: "mod", Message: "division by zero"}
		}
		return cont2(e.store(uint16(int16(v[0]) % int16(v[1]))))

	case 25: // call_2s
		return cont2(e.doCall(v, RoutineFunction))

	case 26: // call_2n
		return cont2(e.doCall(v, RoutineProcedure))

	case 27: // set_colour
		if e.Screen != nil {
			e.Screen.SetColour(uint8(v[0]), uint8(v[1]))
		}
		return cont()

	case 28: // throw
		return e.opThrow(v[0], v[1])
	}
	return Signal{}, &DecodeError{PC: opcode.PC, Message: "unimplemented 2OP opcode"}
}

// opThrow unwinds the call stack back to the frame whose depth (the token
// captured by the "catch" opcode) matches frameRef, then returns value
// from that frame as if it had called ret.
func (e *Engine) opThrow(value uint16, frameRef uint16) (Signal, error) {
	if int(frameRef) > e.Calls.Depth() || frameRef == 0 {
		return Signal{}, &ExecutionError{Message: "throw: invalid catch frame reference"}
	}
	for e.Calls.Depth() > int(frameRef) {
		e.Calls.Pop()
	}
	return cont2(e.doReturn(value))
}
