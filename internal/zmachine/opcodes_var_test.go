package zmachine

import (
	"testing"

	"github.com/zifvm/zif/internal/dictionary"
	"github.com/zifvm/zif/internal/zstring"
)

// buildDictAt writes a minimal V3 dictionary (no separators, one entry:
// "go") at addr and returns the parsed Dictionary.
func buildDictAt(t *testing.T, e *Engine, addr uint32) *dictionary.Dictionary {
	t.Helper()
	coded := zstring.Encode("go", e.Alphabets, 2)

	if err := e.Mem.SetByte(addr, 0); err != nil { // 0 separators
		t.Fatalf("SetByte: %v", err)
	}
	if err := e.Mem.SetByte(addr+1, 4); err != nil { // entry length: 2 words, no data
		t.Fatalf("SetByte: %v", err)
	}
	if err := e.Mem.SetWord(addr+2, 1); err != nil { // 1 entry
		t.Fatalf("SetWord: %v", err)
	}
	entryAddr := addr + 4
	if err := e.Mem.SetWord(entryAddr, coded[0]); err != nil {
		t.Fatalf("SetWord: %v", err)
	}
	if err := e.Mem.SetWord(entryAddr+2, coded[1]); err != nil {
		t.Fatalf("SetWord: %v", err)
	}

	dict, err := dictionary.Parse(e.Mem, addr, e.Mem.Version)
	if err != nil {
		t.Fatalf("dictionary.Parse: %v", err)
	}
	return dict
}

func writeText(t *testing.T, e *Engine, addr uint32, text string) {
	t.Helper()
	if err := e.Mem.SetByte(addr, uint8(len(text)+1)); err != nil {
		t.Fatalf("SetByte: %v", err)
	}
	for i := 0; i < len(text); i++ {
		if err := e.Mem.SetByte(addr+1+uint32(i), text[i]); err != nil {
			t.Fatalf("SetByte: %v", err)
		}
	}
	if err := e.Mem.SetByte(addr+1+uint32(len(text)), 0); err != nil {
		t.Fatalf("SetByte: %v", err)
	}
}

func TestOpTokeniseSkipUnknownFlag(t *testing.T) {
	e := newTestEngine(t, 256)
	const dictAddr = 0x20
	const textAddr = 0x40
	const parseAddr = 0x60

	e.Dict = buildDictAt(t, e, dictAddr)
	writeText(t, e, textAddr, "go xyzzy")

	if err := e.Mem.SetByte(parseAddr, 4); err != nil { // max words
		t.Fatalf("SetByte: %v", err)
	}
	// Pre-seed the second word's slot (xyzzy, unrecognized) with a sentinel
	// address to verify the skip path leaves it untouched.
	const sentinel = 0x1234
	if err := e.Mem.SetWord(parseAddr+2+4, sentinel); err != nil {
		t.Fatalf("SetWord: %v", err)
	}

	if err := e.opTokenise([]uint16{textAddr, parseAddr, 0, 1}); err != nil {
		t.Fatalf("opTokenise: %v", err)
	}

	count, err := e.Mem.GetByte(parseAddr + 1)
	if err != nil || count != 2 {
		t.Fatalf("got count=%d err=%v, want 2 words", count, err)
	}

	goAddr, err := e.Mem.GetWord(parseAddr + 2)
	if err != nil || goAddr == 0 {
		t.Fatalf("got go-word addr=%d err=%v, want a resolved dictionary address", goAddr, err)
	}

	xyzzyAddr, err := e.Mem.GetWord(parseAddr + 2 + 4)
	if err != nil || xyzzyAddr != sentinel {
		t.Fatalf("got xyzzy-word addr=%d err=%v, want untouched sentinel %d", xyzzyAddr, err, sentinel)
	}
}

func TestOpTokeniseOverwritesUnknownWithoutSkipFlag(t *testing.T) {
	e := newTestEngine(t, 256)
	const dictAddr = 0x20
	const textAddr = 0x40
	const parseAddr = 0x60

	e.Dict = buildDictAt(t, e, dictAddr)
	writeText(t, e, textAddr, "go xyzzy")

	if err := e.Mem.SetByte(parseAddr, 4); err != nil {
		t.Fatalf("SetByte: %v", err)
	}
	if err := e.Mem.SetWord(parseAddr+2+4, 0x1234); err != nil {
		t.Fatalf("SetWord: %v", err)
	}

	if err := e.opTokenise([]uint16{textAddr, parseAddr}); err != nil {
		t.Fatalf("opTokenise: %v", err)
	}

	xyzzyAddr, err := e.Mem.GetWord(parseAddr + 2 + 4)
	if err != nil || xyzzyAddr != 0 {
		t.Fatalf("got xyzzy-word addr=%d err=%v, want 0 (overwritten, unrecognized)", xyzzyAddr, err)
	}
}

func TestOutputStreamMemoryRedirection(t *testing.T) {
	e := newTestEngine(t, 256)
	const target = 0x40

	if _, err := e.dispatchVAR(Opcode{Number: 19}, []uint16{3, target}); err != nil {
		t.Fatalf("output_stream push: %v", err)
	}
	if err := e.appendText("hi"); err != nil {
		t.Fatalf("appendText: %v", err)
	}
	if _, err := e.dispatchVAR(Opcode{Number: 19}, []uint16{0xfffd /* -3 */}); err != nil {
		t.Fatalf("output_stream pop: %v", err)
	}

	length, err := e.Mem.GetWord(target)
	if err != nil || length != 2 {
		t.Fatalf("got length=%d err=%v, want 2", length, err)
	}
	b0, _ := e.Mem.GetByte(target + 2)
	b1, _ := e.Mem.GetByte(target + 3)
	if b0 != 'h' || b1 != 'i' {
		t.Fatalf("got captured bytes %q%q, want \"hi\"", b0, b1)
	}
}

func TestOutputStreamPopWithoutPushWarns(t *testing.T) {
	e := newTestEngine(t, 256)

	if _, err := e.dispatchVAR(Opcode{Number: 19}, []uint16{0xfffd /* -3 */}); err != nil {
		t.Fatalf("output_stream -3: %v", err)
	}

	warnings := e.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].Message == "" {
		t.Fatalf("warning has no message")
	}
	// Draining clears the buffer, so a second read sees nothing new.
	if again := e.Warnings(); len(again) != 0 {
		t.Fatalf("got %d warnings after drain, want 0", len(again))
	}
}

func TestDispatchVARCopyTable(t *testing.T) {
	e := newTestEngine(t, 256)
	const src = 0x40
	const dst = 0x48

	for i := 0; i < 4; i++ {
		if err := e.Mem.SetByte(uint32(src+i), uint8(i+1)); err != nil {
			t.Fatalf("SetByte: %v", err)
		}
	}

	if _, err := e.dispatchVAR(Opcode{Number: 29}, []uint16{src, dst, 4}); err != nil {
		t.Fatalf("copy_table: %v", err)
	}

	for i := 0; i < 4; i++ {
		b, err := e.Mem.GetByte(uint32(dst + i))
		if err != nil || b != uint8(i+1) {
			t.Fatalf("byte %d: got %d err=%v, want %d", i, b, err, i+1)
		}
	}
}
