// Package ztable implements the Z-machine's generic table opcodes:
// scan_table, copy_table and print_table, each operating on raw memory
// rather than the object/property model.
package ztable

import "fmt"

// MemoryAccessor is the subset of zcore.Memory these helpers need.
type MemoryAccessor interface {
	GetByte(addr uint32) (uint8, error)
	SetByte(addr uint32, value uint8) error
	GetWord(addr uint32) (uint16, error)
	SetWord(addr uint32, value uint16) error
}

// ScanTable searches len entries of fieldSize bytes starting at addr for
// one equal to value, returning its address and true, or 0 and false if
// not found. fieldSize of 2 compares a word; any other size compares only
// the entry's first byte (per the form bit in the scan_table opcode).
func ScanTable(mem MemoryAccessor, value uint16, addr uint32, length uint16, fieldSize uint16) (uint32, bool, error) {
	if fieldSize == 0 {
		fieldSize = 2
	}
	cur := addr
	for i := uint16(0); i < length; i++ {
		if fieldSize == 2 {
			w, err := mem.GetWord(cur)
			if err != nil {
				return 0, false, err
			}
			if w == value {
				return cur, true, nil
			}
		} else {
			b, err := mem.GetByte(cur)
			if err != nil {
				return 0, false, err
			}
			if uint16(b) == value {
				return cur, true, nil
			}
		}
		cur += uint32(fieldSize)
	}
	return 0, false, nil
}

// CopyTable copies size bytes from src to dst (size < 0 written as its
// absolute value by the opcode decoder's signed operand, destructive
// forward copy permitted), or zero-fills dst when src is 0. safe controls
// whether overlap is handled via a temporary buffer.
func CopyTable(mem MemoryAccessor, src, dst uint32, size uint32, safe bool) error {
	if src == 0 {
		for i := uint32(0); i < size; i++ {
			if err := mem.SetByte(dst+i, 0); err != nil {
				return err
			}
		}
		return nil
	}

	if !safe {
		for i := uint32(0); i < size; i++ {
			b, err := mem.GetByte(src + i)
			if err != nil {
				return err
			}
			if err := mem.SetByte(dst+i, b); err != nil {
				return err
			}
		}
		return nil
	}

	tmp := make([]uint8, size)
	for i := uint32(0); i < size; i++ {
		b, err := mem.GetByte(src + i)
		if err != nil {
			return err
		}
		tmp[i] = b
	}
	for i := uint32(0); i < size; i++ {
		if err := mem.SetByte(dst+i, tmp[i]); err != nil {
			return err
		}
	}
	return nil
}

// PrintTable renders a rectangular block of ASCII text: width bytes per
// row, height rows (default 1), advancing skip bytes between rows
// (default 0). It returns the text with '\n' row separators; the caller
// is responsible for routing that through the active output streams.
func PrintTable(mem MemoryAccessor, addr uint32, width uint16, height uint16, skip uint16) (string, error) {
	if height == 0 {
		height = 1
	}
	var out []byte
	cur := addr
	for row := uint16(0); row < height; row++ {
		if row > 0 {
			out = append(out, '\n')
		}
		for col := uint16(0); col < width; col++ {
			b, err := mem.GetByte(cur)
			if err != nil {
				return "", fmt.Errorf("print_table: %w", err)
			}
			out = append(out, b)
			cur++
		}
		cur += uint32(skip)
	}
	return string(out), nil
}
