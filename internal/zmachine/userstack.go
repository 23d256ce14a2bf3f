package zmachine

// PushUserStack implements the V6 "push value onto stack S" form of the
// push opcode when S is a user stack table rather than the implied
// variable-0 value stack: the table's first word counts remaining free
// slots, decremented on every push.
func (e *Engine) PushUserStack(addr uint32, value uint16) error {
	remaining, err := e.Mem.GetWord(addr)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return &ExecutionError{PC: e.pc, Message: "user stack overflow"}
	}
	remaining--
	if err := e.Mem.SetWord(addr, remaining); err != nil {
		return err
	}
	return e.Mem.SetWord(addr+2+2*uint32(remaining), value)
}

// PullUserStack implements the matching "pull (S)" form.
func (e *Engine) PullUserStack(addr uint32) (uint16, error) {
	remaining, err := e.Mem.GetWord(addr)
	if err != nil {
		return 0, err
	}
	value, err := e.Mem.GetWord(addr + 2 + 2*uint32(remaining))
	if err != nil {
		return 0, err
	}
	if err := e.Mem.SetWord(addr, remaining+1); err != nil {
		return 0, err
	}
	return value, nil
}

// PopUserStack discards the top value of a user stack without returning it,
// for the "pop" form that only ever targets the implicit stack in pre-V6
// but is generalized here for completeness with the V6 table form.
func (e *Engine) PopUserStack(addr uint32) error {
	_, err := e.PullUserStack(addr)
	return err
}
