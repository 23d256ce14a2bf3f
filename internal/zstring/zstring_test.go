package zstring

import "testing"

func byteSliceReader(data []uint8) ByteReader {
	return func(addr uint32) (uint8, error) {
		if int(addr) >= len(data) {
			return 0, &boundsError{addr}
		}
		return data[addr], nil
	}
}

type boundsError struct{ addr uint32 }

func (e *boundsError) Error() string { return "out of bounds read" }

func TestDecodeSimpleWord(t *testing.T) {
	// "cat" in lowercase alphabet A0 at shifted values (c=8, a=6, t=25).
	word := uint16(8)<<10 | uint16(6)<<5 | uint16(25) | 0x8000
	data := []uint8{uint8(word >> 8), uint8(word)}
	got, end, err := Decode(0, 3, DefaultAlphabets, NewDefaultUnicodeTable(), nil, byteSliceReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "cat" {
		t.Fatalf("got %q, want %q", got, "cat")
	}
	if end != 2 {
		t.Fatalf("end = %d, want 2", end)
	}
}

func TestDecodeShiftToUppercase(t *testing.T) {
	// shift-to-A1 (4), then 'A' (index 0 -> zchar 6), then space.
	word := uint16(4)<<10 | uint16(6)<<5 | uint16(0) | 0x8000
	data := []uint8{uint8(word >> 8), uint8(word)}
	got, _, err := Decode(0, 3, DefaultAlphabets, NewDefaultUnicodeTable(), nil, byteSliceReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "A " {
		t.Fatalf("got %q, want %q", got, "A ")
	}
}

func TestDecodeWithAbbreviation(t *testing.T) {
	// Build "hi" at address 10, the abbreviation target, padded with
	// z-char 5 (z-char 0 would decode as a space).
	hIdx, _ := findInAlphabet(DefaultAlphabets.A0, 'h')
	iIdx, _ := findInAlphabet(DefaultAlphabets.A0, 'i')
	hiWord := uint16(hIdx)<<10 | uint16(iIdx)<<5 | 5 | 0x8000
	data := make([]uint8, 12)
	data[10] = uint8(hiWord >> 8)
	data[11] = uint8(hiWord)

	// Main string: abbreviation set 0 (zchar 1), index 5, padded with z-char 5.
	mainWord := uint16(1)<<10 | uint16(5)<<5 | 5 | 0x8000
	data[0] = uint8(mainWord >> 8)
	data[1] = uint8(mainWord)

	abbrevReader := func(n int) (uint32, error) {
		if n != 5 {
			t.Fatalf("unexpected abbreviation index %d", n)
		}
		return 10, nil
	}

	got, _, err := Decode(0, 3, DefaultAlphabets, NewDefaultUnicodeTable(), abbrevReader, byteSliceReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestEncodeRoundTripsThroughAlphabet(t *testing.T) {
	words := Encode("cat", DefaultAlphabets, 3)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[2]&0x8000 == 0 {
		t.Fatal("last word should have the end-of-string bit set")
	}

	data := make([]uint8, len(words)*2)
	for i, w := range words {
		data[i*2] = uint8(w >> 8)
		data[i*2+1] = uint8(w)
	}
	got, _, err := Decode(0, 3, DefaultAlphabets, NewDefaultUnicodeTable(), nil, byteSliceReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "cat" {
		t.Fatalf("round trip got %q, want %q", got, "cat")
	}
}

func TestUnicodeTranslation(t *testing.T) {
	tbl := NewDefaultUnicodeTable()
	r, ok := tbl.ToRune(155)
	if !ok || r != 0xe4 {
		t.Fatalf("ToRune(155) = %q, %v", r, ok)
	}
	code, ok := tbl.FromRune(0xe4)
	if !ok || code != 155 {
		t.Fatalf("FromRune(0xe4) = %d, %v", code, ok)
	}
}
