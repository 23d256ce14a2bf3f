package zcore

// LoadError indicates a story image failed validation before a Memory could
// be constructed from it: too small, bad version byte, or a corrupt header.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return "load error: " + e.Message }

// MemoryError indicates an out-of-bounds or read-only-violation access.
// Every Memory accessor returns this rather than panicking, so the engine
// can turn it into a fatal ExecutionError with opcode context attached.
type MemoryError struct {
	Message string
	Address uint32
}

func (e *MemoryError) Error() string { return "memory error: " + e.Message }
