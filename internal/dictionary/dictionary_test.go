package dictionary

import "testing"

type fakeMem struct{ bytes []uint8 }

func (m *fakeMem) GetByte(addr uint32) (uint8, error) { return m.bytes[addr], nil }
func (m *fakeMem) SetByte(addr uint32, v uint8) error { m.bytes[addr] = v; return nil }
func (m *fakeMem) GetWord(addr uint32) (uint16, error) {
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

func buildFixture() *fakeMem {
	// separators: "," "." ; entry size 4 (2 words, no data bytes), 2 entries.
	bytes := []uint8{
		2, ',', '.', // separator count + separators
		4,      // entry size
		0, 2,   // entry count = 2
		0x00, 0x01, 0x00, 0x02, // entry 0: coded word pair
		0x00, 0x03, 0x00, 0x04, // entry 1: coded word pair
	}
	return &fakeMem{bytes: bytes}
}

func TestParseDictionary(t *testing.T) {
	mem := buildFixture()
	d, err := Parse(mem, 0, 3)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Separators) != 2 {
		t.Fatalf("expected 2 separators, got %d", len(d.Separators))
	}
	if !d.IsSeparator(',') || !d.IsSeparator('.') {
		t.Fatal("expected ',' and '.' to be separators")
	}

	e, ok := d.Find([]uint16{0x0003, 0x0004})
	if !ok {
		t.Fatal("expected to find entry {3,4}")
	}
	if e.Addr != 10 {
		t.Fatalf("entry addr = %d, want 10", e.Addr)
	}

	if _, ok := d.Find([]uint16{0x9999, 0x9999}); ok {
		t.Fatal("should not find a word that isn't in the dictionary")
	}
}

func TestTokenise(t *testing.T) {
	mem := buildFixture()
	d, _ := Parse(mem, 0, 3)

	tokens := Tokenise("take lamp, then go north.", d)
	want := []string{"take", "lamp", ",", "then", "go", "north", "."}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Text != w {
			t.Fatalf("token %d = %q, want %q", i, tokens[i].Text, w)
		}
	}
}
