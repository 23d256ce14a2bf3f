// Package zcore implements the Z-machine's byte-addressed memory: header
// parsing, the dynamic/static/high partitions, big-endian word access and
// packed-address unpacking.
package zcore

import (
	"encoding/binary"
	"fmt"
)

// MinHeaderSize is the fixed size of a Z-machine header.
const MinHeaderSize = 64

// Memory is the big-endian byte store backing a running story file. It owns
// the header fields, enforces the read-only static/high partitions, and is
// the only thing in the interpreter allowed to mutate the story image.
type Memory struct {
	bytes       []uint8
	Version     uint8
	Flags1      uint8
	Release     uint16
	HighBase    uint16 // header 0x04 - first byte of high memory
	InitialPC   uint16 // header 0x06
	DictionaryBase      uint16 // header 0x08
	ObjectTableBase     uint16 // header 0x0a
	GlobalVariableBase  uint16 // header 0x0c
	StaticBase          uint16 // header 0x0e - first byte of static memory
	Flags2              uint16 // header 0x10
	AbbreviationBase    uint16 // header 0x18
	FileLengthWord      uint16 // header 0x1a, needs version-specific scaling
	DeclaredChecksum    uint16 // header 0x1c
	RoutinesOffset      uint16 // header 0x28, V6/7 only
	StringOffset        uint16 // header 0x2a, V6/7 only
	TerminatingCharBase uint16 // header 0x2e, V5+
	AlphabetTableBase   uint16 // header 0x34, V5+
	ExtensionTableBase  uint16 // header 0x36, V5+
}

// Load validates and wraps a raw story-file image. It does not mutate the
// image beyond what the spec calls for at load (interpreter number/version
// and capability flags are written by the caller, not here).
func Load(image []uint8) (*Memory, error) {
	if len(image) < MinHeaderSize {
		return nil, &LoadError{Message: fmt.Sprintf("image too small: %d bytes, need at least %d", len(image), MinHeaderSize)}
	}

	version := image[0x00]
	if version < 1 || version > 8 {
		return nil, &LoadError{Message: fmt.Sprintf("unsupported version %d", version)}
	}

	staticBase := binary.BigEndian.Uint16(image[0x0e:0x10])
	if int(staticBase) < MinHeaderSize {
		return nil, &LoadError{Message: fmt.Sprintf("static memory base 0x%x is below the header", staticBase)}
	}

	m := &Memory{
		bytes:               image,
		Version:             version,
		Flags1:              image[0x01],
		Release:             binary.BigEndian.Uint16(image[0x02:0x04]),
		HighBase:            binary.BigEndian.Uint16(image[0x04:0x06]),
		InitialPC:           binary.BigEndian.Uint16(image[0x06:0x08]),
		DictionaryBase:      binary.BigEndian.Uint16(image[0x08:0x0a]),
		ObjectTableBase:     binary.BigEndian.Uint16(image[0x0a:0x0c]),
		GlobalVariableBase:  binary.BigEndian.Uint16(image[0x0c:0x0e]),
		StaticBase:          staticBase,
		Flags2:              binary.BigEndian.Uint16(image[0x10:0x12]),
		AbbreviationBase:    binary.BigEndian.Uint16(image[0x18:0x1a]),
		FileLengthWord:      binary.BigEndian.Uint16(image[0x1a:0x1c]),
		DeclaredChecksum:    binary.BigEndian.Uint16(image[0x1c:0x1e]),
		RoutinesOffset:      binary.BigEndian.Uint16(image[0x28:0x2a]),
		StringOffset:        binary.BigEndian.Uint16(image[0x2a:0x2c]),
		TerminatingCharBase: binary.BigEndian.Uint16(image[0x2e:0x30]),
		AlphabetTableBase:   binary.BigEndian.Uint16(image[0x34:0x36]),
		ExtensionTableBase:  binary.BigEndian.Uint16(image[0x36:0x38]),
	}

	return m, nil
}

// Len is the total size of the memory image in bytes.
func (m *Memory) Len() uint32 { return uint32(len(m.bytes)) }

// FileLength is the story's declared length in bytes, decoded from the
// version-scaled header word at 0x1a.
func (m *Memory) FileLength() uint32 {
	var scale uint32
	switch {
	case m.Version <= 3:
		scale = 2
	case m.Version <= 5:
		scale = 4
	default:
		scale = 8
	}
	return uint32(m.FileLengthWord) * scale
}

func (m *Memory) checkReadAddr(addr uint32, width uint32) error {
	if addr+width > m.Len() {
		return &MemoryError{Message: fmt.Sprintf("read past end of memory at 0x%x (size %d)", addr, width), Address: addr}
	}
	return nil
}

// GetByte reads a single byte. Reading past the end of memory is fatal.
func (m *Memory) GetByte(addr uint32) (uint8, error) {
	if err := m.checkReadAddr(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// GetWord reads a big-endian 16-bit word.
func (m *Memory) GetWord(addr uint32) (uint16, error) {
	if err := m.checkReadAddr(addr, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(m.bytes[addr : addr+2]), nil
}

// SetByte writes a single byte. Writes at or beyond the static base are
// fatal, since static and high memory are read-only to ordinary opcodes.
func (m *Memory) SetByte(addr uint32, value uint8) error {
	if err := m.checkReadAddr(addr, 1); err != nil {
		return err
	}
	if addr >= uint32(m.StaticBase) {
		return &MemoryError{Message: fmt.Sprintf("write to read-only memory at 0x%x", addr), Address: addr}
	}
	m.bytes[addr] = value
	return nil
}

// SetWord writes a big-endian 16-bit word, subject to the same read-only
// restriction as SetByte.
func (m *Memory) SetWord(addr uint32, value uint16) error {
	if err := m.checkReadAddr(addr, 2); err != nil {
		return err
	}
	if addr >= uint32(m.StaticBase) {
		return &MemoryError{Message: fmt.Sprintf("write to read-only memory at 0x%x", addr), Address: addr}
	}
	binary.BigEndian.PutUint16(m.bytes[addr:addr+2], value)
	return nil
}

// ForceSetByte writes regardless of the static/high partition. It exists for
// the handful of places the spec requires the interpreter itself to touch
// otherwise read-only memory: header capability flags at load, and restoring
// dynamic memory from a snapshot.
func (m *Memory) ForceSetByte(addr uint32, value uint8) {
	m.bytes[addr] = value
}

// ForceSetWord is the word-sized counterpart to ForceSetByte.
func (m *Memory) ForceSetWord(addr uint32, value uint16) {
	binary.BigEndian.PutUint16(m.bytes[addr:addr+2], value)
}

// Raw exposes the full backing buffer for snapshotting; callers must not
// retain a reference across a restart/restore, which replaces the buffer's
// dynamic-memory contents in place.
func (m *Memory) Raw() []uint8 { return m.bytes }

// UnpackRoutine converts a packed routine address into a byte address.
func (m *Memory) UnpackRoutine(packed uint16) uint32 {
	return m.unpack(packed, m.RoutinesOffset)
}

// UnpackString converts a packed string address into a byte address.
func (m *Memory) UnpackString(packed uint16) uint32 {
	return m.unpack(packed, m.StringOffset)
}

func (m *Memory) unpack(packed uint16, offset uint16) uint32 {
	switch {
	case m.Version <= 3:
		return 2 * uint32(packed)
	case m.Version <= 5:
		return 4 * uint32(packed)
	case m.Version <= 7:
		return 4*uint32(packed) + 8*uint32(offset)
	default: // V8
		return 8 * uint32(packed)
	}
}

// Checksum sums every byte from 0x40 to the declared file length, modulo
// 2^16, for the verify opcode.
func (m *Memory) Checksum() uint16 {
	var sum uint16
	end := m.FileLength()
	if end > m.Len() {
		end = m.Len()
	}
	for i := uint32(0x40); i < end; i++ {
		sum += uint16(m.bytes[i])
	}
	return sum
}
