package zmachine

// callRoutine pushes a new call frame for packed (a packed routine
// address; 0 means "do nothing, function calls return false") with args
// bound to its locals in order, and repoints the PC at its first
// instruction. returnPC is where execution resumes once the routine
// returns; resultVar is only consulted when kind is RoutineFunction.
func (e *Engine) callRoutine(packed uint16, args []uint16, kind RoutineType, resultVar uint8, returnPC uint32) error {
	if packed == 0 {
		if kind == RoutineFunction {
			return e.writeVariable(resultVar, 0)
		}
		return nil
	}

	addr := e.Mem.UnpackRoutine(packed)
	numLocals, err := e.Mem.GetByte(addr)
	if err != nil {
		return err
	}
	addr++

	var locals [15]uint16
	if e.Mem.Version <= 4 {
		for i := 0; i < int(numLocals); i++ {
			w, err := e.Mem.GetWord(addr)
			if err != nil {
				return err
			}
			locals[i] = w
			addr += 2
		}
	}
	// V5+ routines do not store initial local values in the image; locals
	// default to zero (already the case for a fresh array).
	for i, a := range args {
		if i < int(numLocals) {
			locals[i] = a
		}
	}

	frame := Frame{
		ReturnPC:   returnPC,
		NumLocals:  int(numLocals),
		Locals:     locals,
		ResultVar:  resultVar,
		Type:       kind,
		PreviousSP: e.Values.Depth(),
		ArgCount:   len(args),
	}
	e.Calls.Push(frame)
	e.pc = addr
	return nil
}

// doCall implements the call family of opcodes as decoded from the
// instruction stream: operand 0 is the packed routine address, the rest
// are arguments. kind selects whether the call site has a trailing store
// variable byte (function) or not (procedure).
func (e *Engine) doCall(operands []uint16, kind RoutineType) error {
	var resultVar uint8
	if kind == RoutineFunction {
		v, err := e.readStoreVar()
		if err != nil {
			return err
		}
		resultVar = v
	}
	return e.callRoutine(operands[0], operands[1:], kind, resultVar, e.pc)
}

// InvokeRoutine runs a packed routine to completion as a nested call, used
// for V4+ timed input's interrupt routine. It shares the engine's memory
// and object state but must not itself suspend on input, since a timeout
// routine that reads input is a story bug the standard leaves undefined;
// such a call simply fails rather than deadlocking the host.
func (e *Engine) InvokeRoutine(packedAddr uint16, args []uint16) (uint16, error) {
	savedPC := e.pc
	baseDepth := e.Calls.Depth()

	// The nested call's "return PC" is never used as real code, since we
	// pop frames back down to baseDepth below and restore savedPC
	// ourselves; it only has to be a value doReturn can stash.
	if err := e.callRoutine(packedAddr, args, RoutineFunction, 0, e.pc); err != nil {
		return 0, err
	}

	for e.Calls.Depth() > baseDepth {
		sig, err := e.Step()
		if err != nil {
			return 0, err
		}
		if sig.Kind == SigSuspended {
			return 0, &ExecutionError{PC: e.pc, Message: "interrupt routine attempted to read input"}
		}
		if sig.Kind != SigContinue {
			break
		}
	}

	result, err := e.readVariable(0)
	e.pc = savedPC
	return result, err
}
