package zmachine

import (
	"testing"

	"github.com/zifvm/zif/internal/zcore"
)

func newTestEngine(t *testing.T, size int) *Engine {
	t.Helper()
	image := make([]uint8, size)
	image[0] = 3     // version 3
	image[0x0e] = 0  // static memory base (0x0e/0x0f): past the test addresses below
	image[0x0f] = 0x80
	mem, err := zcore.Load(image)
	if err != nil {
		t.Fatalf("zcore.Load: %v", err)
	}
	return NewEngine(mem)
}

func TestUserStackPushPull(t *testing.T) {
	e := newTestEngine(t, 256)
	const addr = 0x40
	if err := e.Mem.SetWord(addr, 3); err != nil { // 3 free slots
		t.Fatalf("SetWord: %v", err)
	}

	if err := e.PushUserStack(addr, 10); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := e.PushUserStack(addr, 20); err != nil {
		t.Fatalf("push: %v", err)
	}

	v, err := e.PullUserStack(addr)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if v != 20 {
		t.Fatalf("got %d, want 20", v)
	}

	v, err = e.PullUserStack(addr)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if v != 10 {
		t.Fatalf("got %d, want 10", v)
	}
}

func TestUserStackOverflow(t *testing.T) {
	e := newTestEngine(t, 256)
	const addr = 0x40
	if err := e.Mem.SetWord(addr, 0); err != nil {
		t.Fatalf("SetWord: %v", err)
	}
	if err := e.PushUserStack(addr, 1); err == nil {
		t.Fatal("expected overflow error")
	}
}
