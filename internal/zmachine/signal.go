package zmachine

// SignalKind is the outcome of a single Step call: whether execution
// should continue, the machine is waiting on the host for input, or the
// run has ended (quit or restart).
type SignalKind uint8

const (
	// SigContinue means Step ran an instruction and the caller should call
	// Step again immediately (no I/O pending).
	SigContinue SignalKind = iota
	// SigSuspended means the machine is waiting for line or character
	// input; the host must eventually call DeliverInput.
	SigSuspended
	// SigQuit means the quit opcode ran; the machine should stop stepping.
	SigQuit
	// SigRestart means the restart opcode ran; the host should reload the
	// original story image and start over.
	SigRestart
)

// Signal is the explicit, typed replacement for the teacher's blocking
// channel receive inside sread/read_char: Step returns one of these
// instead of parking a goroutine, so the engine can be driven
// synchronously by any host (a test, a batch runner, or a TUI event loop).
type Signal struct {
	Kind SignalKind
	// Input describes what kind of input is being waited for when Kind is
	// SigSuspended.
	Input InputRequest
}

// InputKind distinguishes the two suspending opcodes.
type InputKind uint8

const (
	InputLine InputKind = iota
	InputChar
)

// InputRequest carries everything the host needs to prompt the player and
// everything the engine needs to resume once an answer arrives.
type InputRequest struct {
	Kind          InputKind
	MaxLength     int    // sread: max characters accepted, from the text buffer's first byte
	Preloaded     string // sread: V5+ may preload existing buffer text
	TimeoutTenths uint16 // V4+ timed input; 0 means no timeout
	active           bool // distinguishes a real request from the zero value
	textBufferAddr   uint32
	parseBufferAddr  uint32
	resultVar        uint8  // read_char: variable to store the character into; sread (V5+): variable to store the terminating character into
	hasResultVar     bool   // sread pre-V5 has no store variable at all
	interruptRoutine uint16 // V4+ timed input: packed address of the routine to invoke on timeout, 0 if none
}
