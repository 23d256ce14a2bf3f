package zmachine

import "testing"

// newFramedTestEngine is newTestEngine with an active call frame pushed, so
// variable 0 (the stack pointer) has a PreviousSP to measure against, the
// same setup every indirect-variable opcode runs under in practice.
func newFramedTestEngine(t *testing.T, size int) *Engine {
	t.Helper()
	e := newTestEngine(t, size)
	e.Calls.Push(Frame{NumLocals: 1})
	return e
}

// The seven opcodes below (inc, dec, inc_chk, dec_chk, load, store, pull)
// take an indirect reference to a variable; per the standard, an indirect
// reference to variable 0 reads/writes the top of the value stack in
// place instead of popping/pushing it.

func TestLoadSPPeeksInPlace(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	const destGlobal = 16
	if err := e.Mem.SetByte(e.pc, destGlobal); err != nil {
		t.Fatalf("SetByte: %v", err)
	}

	if _, err := e.dispatch1OP(Opcode{Number: 14}, []uint16{0}); err != nil {
		t.Fatalf("load sp: %v", err)
	}

	if depth := e.Values.Depth(); depth != 2 {
		t.Fatalf("got depth %d, want 2 (load must not pop)", depth)
	}
	got, err := e.readVariable(destGlobal)
	if err != nil || got != 20 {
		t.Fatalf("got global=%d err=%v, want 20", got, err)
	}
}

func TestIncSPLeavesDepthUnchanged(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	if _, err := e.dispatch1OP(Opcode{Number: 5}, []uint16{0}); err != nil {
		t.Fatalf("inc sp: %v", err)
	}

	if depth := e.Values.Depth(); depth != 2 {
		t.Fatalf("got depth %d, want 2 (inc must not push)", depth)
	}
	top, err := e.Values.Peek(0)
	if err != nil || top != 21 {
		t.Fatalf("got top=%d err=%v, want 21", top, err)
	}
}

func TestDecSPLeavesDepthUnchanged(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	if _, err := e.dispatch1OP(Opcode{Number: 6}, []uint16{0}); err != nil {
		t.Fatalf("dec sp: %v", err)
	}

	if depth := e.Values.Depth(); depth != 2 {
		t.Fatalf("got depth %d, want 2 (dec must not push)", depth)
	}
	top, err := e.Values.Peek(0)
	if err != nil || top != 19 {
		t.Fatalf("got top=%d err=%v, want 19", top, err)
	}
}

func TestIncChkSPLeavesDepthUnchanged(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	if _, err := e.dispatch2OP(Opcode{Number: 5}, []uint16{0, 15}); err != nil {
		t.Fatalf("inc_chk sp: %v", err)
	}

	if depth := e.Values.Depth(); depth != 2 {
		t.Fatalf("got depth %d, want 2 (inc_chk must not push)", depth)
	}
	top, err := e.Values.Peek(0)
	if err != nil || top != 21 {
		t.Fatalf("got top=%d err=%v, want 21", top, err)
	}
}

func TestStoreSPOverwritesInPlace(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	if _, err := e.dispatch2OP(Opcode{Number: 13}, []uint16{0, 99}); err != nil {
		t.Fatalf("store sp: %v", err)
	}

	if depth := e.Values.Depth(); depth != 2 {
		t.Fatalf("got depth %d, want 2 (store must not push)", depth)
	}
	top, err := e.Values.Peek(0)
	if err != nil || top != 99 {
		t.Fatalf("got top=%d err=%v, want 99", top, err)
	}
}

func TestPullSPReadsAndReplacesInPlace(t *testing.T) {
	e := newFramedTestEngine(t, 256)
	e.Values.Push(10)
	e.Values.Push(20)

	if _, err := e.dispatchVAR(Opcode{Number: 9}, []uint16{0}); err != nil {
		t.Fatalf("pull sp: %v", err)
	}

	// pull always pops the general stack for its value (depth-1), then an
	// indirect write to variable 0 overwrites the new top in place rather
	// than pushing, so net depth drops by exactly one.
	if depth := e.Values.Depth(); depth != 1 {
		t.Fatalf("got depth %d, want 1", depth)
	}
	top, err := e.Values.Peek(0)
	if err != nil || top != 20 {
		t.Fatalf("got top=%d err=%v, want 20", top, err)
	}
}
