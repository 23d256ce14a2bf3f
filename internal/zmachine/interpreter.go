package zmachine

import (
	"fmt"

	"github.com/zifvm/zif/internal/blorb"
	"github.com/zifvm/zif/internal/zcore"
)

// State is the Interpreter's coarse run state, checked at the top of every
// re-entrant call so a host that calls Resume or DeliverInput out of turn
// gets a clear FatalError instead of silently corrupting engine state.
type State uint8

const (
	StateUnstarted State = iota
	StateRunning
	StateSuspended
	StateQuit
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateQuit:
		return "quit"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// FatalError reports a violation of the Interpreter's single-threaded,
// turn-taking contract (spec.md §5): calling Resume before Start, while
// input is pending or after the story has quit or failed, DeliverInput
// when nothing is pending, and so on. A Resume call made from inside a
// running Resume (for instance from a Screen callback) is not detected,
// since the state is Running throughout both. It is never returned
// for ordinary game-triggered failures, which surface as the zmachine
// error types from errors.go instead.
type FatalError struct {
	State State
	Call  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("zmachine: %s called while interpreter is %s", e.Call, e.State)
}

// Interpreter wraps an Engine with the explicit state machine a host drives:
// Start once, then alternate Resume (step until suspended/quit) and
// DeliverInput (answer the pending request) until Resume reports Quit. On
// Restart, Resume has already reloaded the story and left the interpreter
// Running, so the host calls Resume again rather than Start.
type Interpreter struct {
	Engine *Engine
	State  State

	originalImage []byte
	recentPCs     []uint32 // bounded ring buffer of recently-executed PCs, for fatal-error diagnostics
}

const recentPCRingSize = 64

// NewInterpreter loads a (possibly Blorb-wrapped) story image and
// constructs an Engine ready for Start.
func NewInterpreter(rawImage []byte) (*Interpreter, error) {
	storyImage, err := blorb.ExtractExec(rawImage)
	if err != nil {
		return nil, err
	}

	original := make([]byte, len(storyImage))
	copy(original, storyImage)

	mem, err := zcore.Load(append([]byte(nil), storyImage...))
	if err != nil {
		return nil, err
	}
	mem.InitCapabilities(80, 24)

	return &Interpreter{
		Engine:        NewEngine(mem),
		State:         StateUnstarted,
		originalImage: original,
	}, nil
}

// Start brings the interpreter to its first instruction.
func (in *Interpreter) Start() error {
	if in.State != StateUnstarted {
		return &FatalError{State: in.State, Call: "Start"}
	}
	if err := in.Engine.Start(); err != nil {
		in.State = StateFailed
		return err
	}
	in.State = StateRunning
	return nil
}

// Resume steps the engine until it suspends on input, quits, restarts, or
// hits an error. It is the only method that actually executes Z-machine
// instructions.
func (in *Interpreter) Resume() (Signal, error) {
	if in.State != StateRunning {
		return Signal{}, &FatalError{State: in.State, Call: "Resume"}
	}

	for {
		sig, err := in.Engine.Step()
		if err != nil {
			in.State = StateFailed
			return Signal{}, err
		}
		in.recordPC()

		switch sig.Kind {
		case SigContinue:
			continue
		case SigSuspended:
			in.State = StateSuspended
			return sig, nil
		case SigQuit:
			in.State = StateQuit
			return sig, nil
		case SigRestart:
			if err := in.restart(); err != nil {
				in.State = StateFailed
				return Signal{}, err
			}
			return sig, nil
		}
		return sig, nil
	}
}

func (in *Interpreter) recordPC() {
	pc := in.Engine.PC()
	if len(in.recentPCs) < recentPCRingSize {
		in.recentPCs = append(in.recentPCs, pc)
		return
	}
	copy(in.recentPCs, in.recentPCs[1:])
	in.recentPCs[len(in.recentPCs)-1] = pc
}

// RecentPCs returns the last few executed instruction addresses, most
// recent first, for inclusion in a fatal-error diagnostic.
func (in *Interpreter) RecentPCs() []uint32 {
	out := make([]uint32, len(in.recentPCs))
	for i, pc := range in.recentPCs {
		out[len(out)-1-i] = pc
	}
	return out
}

func (in *Interpreter) restart() error {
	mem, err := zcore.Load(append([]byte(nil), in.originalImage...))
	if err != nil {
		return err
	}
	mem.InitCapabilities(80, 24)

	// Carry the host-supplied ports across to the fresh engine: restart
	// replaces all story state, but the screen/input/storage wiring is a
	// property of the host session, not the story.
	prev := in.Engine
	next := NewEngine(mem)
	next.Screen = prev.Screen
	next.Input = prev.Input
	next.Storage = prev.Storage
	next.SaveName = prev.SaveName
	in.Engine = next

	if err := in.Engine.Start(); err != nil {
		return err
	}
	in.State = StateRunning
	return nil
}

// DeliverInput answers a pending sread/aread request with a line of text.
func (in *Interpreter) DeliverInput(text string) error {
	if in.State != StateSuspended {
		return &FatalError{State: in.State, Call: "DeliverInput"}
	}
	if err := in.Engine.DeliverLine(text); err != nil {
		in.State = StateFailed
		return err
	}
	in.State = StateRunning
	return nil
}

// DeliverChar answers a pending read_char request with one ZSCII character.
func (in *Interpreter) DeliverChar(ch uint16) error {
	if in.State != StateSuspended {
		return &FatalError{State: in.State, Call: "DeliverChar"}
	}
	if err := in.Engine.DeliverChar(ch); err != nil {
		in.State = StateFailed
		return err
	}
	in.State = StateRunning
	return nil
}

// DeliverTimeout answers a pending input request with a host timer firing
// before the player responds, per V4+ timed input.
func (in *Interpreter) DeliverTimeout() error {
	if in.State != StateSuspended {
		return &FatalError{State: in.State, Call: "DeliverTimeout"}
	}
	sig, err := in.Engine.DeliverTimeout()
	if err != nil {
		in.State = StateFailed
		return err
	}
	if sig.Kind == SigSuspended {
		return nil // interrupt routine declined to abort the read; still waiting
	}
	in.State = StateRunning
	return nil
}

// GetPendingInput reports what the suspended engine is waiting for.
func (in *Interpreter) GetPendingInput() InputRequest {
	return in.Engine.PendingInput()
}

// Quit forces the interpreter into the Quit state, as if the story had
// executed the quit opcode.
func (in *Interpreter) Quit() {
	in.State = StateQuit
}

// ExportSaveState serializes the running engine's state for persistence.
func (in *Interpreter) ExportSaveState() []byte {
	return in.Engine.ExportSaveState()
}

// ImportSaveState restores a previously exported state.
func (in *Interpreter) ImportSaveState(data []byte) error {
	return in.Engine.ImportSaveState(data)
}
