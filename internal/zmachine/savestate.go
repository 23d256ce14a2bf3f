package zmachine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const saveMagic = "GOZM"

// Snapshot is a complete, self-contained capture of everything save/undo
// needs to restore: dynamic memory, the call stack and the value stack,
// and the program counter. Static and high memory are never captured
// since the story format forbids writing to them, so they never change.
type Snapshot struct {
	PC            uint32
	DynamicMemory []uint8
	Calls         *CallStack
	Values        *ValueStack
}

// Capture takes a snapshot of the engine's current state.
func (e *Engine) Capture() *Snapshot {
	dynamic := make([]uint8, e.Mem.StaticBase)
	copy(dynamic, e.Mem.Raw()[:e.Mem.StaticBase])
	return &Snapshot{
		PC:            e.pc,
		DynamicMemory: dynamic,
		Calls:         e.Calls.Clone(),
		Values:        e.Values.Clone(),
	}
}

// Restore applies a previously captured snapshot, replacing dynamic
// memory and the call/value stacks in place.
func (e *Engine) Restore(s *Snapshot) {
	raw := e.Mem.Raw()
	copy(raw[:len(s.DynamicMemory)], s.DynamicMemory)
	e.Calls = s.Calls.Clone()
	e.Values = s.Values.Clone()
	e.pc = s.PC
}

// SaveUndo records the current state as the one-slot undo buffer save_undo
// writes to.
func (e *Engine) SaveUndo() {
	e.undoSlot = e.Capture()
}

// RestoreUndo applies the one-slot undo buffer, returning false if nothing
// has been saved yet.
func (e *Engine) RestoreUndo() bool {
	if e.undoSlot == nil {
		return false
	}
	e.Restore(e.undoSlot)
	return true
}

// serialize encodes a Snapshot into the GOZM binary save format: a magic
// tag, the PC (uint32), the dynamic memory length (uint16) and bytes, the
// frame count (uint16) and each frame (return PC, type, local count,
// result variable, argument count, PreviousSP, locals), then the value
// count (uint32) and the whole shared value stack.
func (s *Snapshot) serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString(saveMagic)
	binary.Write(&buf, binary.BigEndian, uint32(s.PC))
	binary.Write(&buf, binary.BigEndian, uint16(len(s.DynamicMemory)))
	buf.Write(s.DynamicMemory)

	binary.Write(&buf, binary.BigEndian, uint16(len(s.Calls.frames)))
	for _, f := range s.Calls.frames {
		binary.Write(&buf, binary.BigEndian, uint32(f.ReturnPC))
		buf.WriteByte(uint8(f.Type))
		buf.WriteByte(uint8(f.NumLocals))
		buf.WriteByte(f.ResultVar)
		binary.Write(&buf, binary.BigEndian, uint16(f.ArgCount))
		binary.Write(&buf, binary.BigEndian, uint32(f.PreviousSP))
		for i := 0; i < f.NumLocals; i++ {
			binary.Write(&buf, binary.BigEndian, f.Locals[i])
		}
	}

	binary.Write(&buf, binary.BigEndian, uint32(len(s.Values.values)))
	for _, v := range s.Values.values {
		binary.Write(&buf, binary.BigEndian, v)
	}

	return buf.Bytes()
}

func deserializeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < 4 || string(data[:4]) != saveMagic {
		return nil, fmt.Errorf("not a recognized save file")
	}
	r := bytes.NewReader(data[4:])

	var pc uint32
	if err := binary.Read(r, binary.BigEndian, &pc); err != nil {
		return nil, err
	}
	var dynLen uint16
	if err := binary.Read(r, binary.BigEndian, &dynLen); err != nil {
		return nil, err
	}
	dynamic := make([]uint8, dynLen)
	if _, err := io.ReadFull(r, dynamic); err != nil {
		return nil, err
	}

	var frameCount uint16
	if err := binary.Read(r, binary.BigEndian, &frameCount); err != nil {
		return nil, err
	}
	calls := &CallStack{frames: make([]Frame, frameCount)}
	for i := range calls.frames {
		f := &calls.frames[i]
		if err := binary.Read(r, binary.BigEndian, &f.ReturnPC); err != nil {
			return nil, err
		}
		t, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		f.Type = RoutineType(t)
		numLocals, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		f.NumLocals = int(numLocals)
		f.ResultVar, err = r.ReadByte()
		if err != nil {
			return nil, err
		}
		var argCount uint16
		if err := binary.Read(r, binary.BigEndian, &argCount); err != nil {
			return nil, err
		}
		f.ArgCount = int(argCount)
		var prevSP uint32
		if err := binary.Read(r, binary.BigEndian, &prevSP); err != nil {
			return nil, err
		}
		f.PreviousSP = int(prevSP)
		for j := 0; j < f.NumLocals; j++ {
			if err := binary.Read(r, binary.BigEndian, &f.Locals[j]); err != nil {
				return nil, err
			}
		}
	}

	var valueCount uint32
	if err := binary.Read(r, binary.BigEndian, &valueCount); err != nil {
		return nil, err
	}
	values := &ValueStack{values: make([]uint16, valueCount)}
	for i := range values.values {
		if err := binary.Read(r, binary.BigEndian, &values.values[i]); err != nil {
			return nil, err
		}
	}

	return &Snapshot{PC: pc, DynamicMemory: dynamic, Calls: calls, Values: values}, nil
}

// ExportSaveState serializes the engine's current state to the GOZM
// binary format for the save opcode / Interpreter.ExportSaveState.
func (e *Engine) ExportSaveState() []byte {
	return e.Capture().serialize()
}

// ImportSaveState parses a previously exported GOZM save and applies it.
func (e *Engine) ImportSaveState(data []byte) error {
	snap, err := deserializeSnapshot(data)
	if err != nil {
		return err
	}
	e.Restore(snap)
	return nil
}
