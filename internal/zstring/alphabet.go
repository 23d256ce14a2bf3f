// Package zstring implements the Z-machine text codec: 5-bit Z-character
// decoding across the three alphabets, abbreviation expansion, the 10-bit
// ZSCII escape, and unicode translation for extended ZSCII codes.
package zstring

// Alphabets holds the three 26-character shift alphabets used to map a
// 5-bit Z-character (6..31) onto a ZSCII code. A0 is lower case, A1 is upper
// case, A2 is punctuation/digits with two escape slots (6 and 7).
type Alphabets struct {
	A0 [26]uint8
	A1 [26]uint8
	A2 [26]uint8
}

// DefaultAlphabets is the standard table every version falls back to absent
// a custom alphabet table (the only option before V5, and the fallback at
// V5+ when the header's alphabet-table address is 0).
var DefaultAlphabets = Alphabets{
	A0: [26]uint8{
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
	},
	A1: [26]uint8{
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z',
	},
	A2: [26]uint8{
		// position 0 (z-char 6) is never looked up: Decode treats it as the
		// escape to 10-bit ZSCII. Position 1 (z-char 7) is newline.
		' ', '\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.',
		',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')',
	},
}

// LoadAlphabets reads a custom V5+ alphabet table (78 ZSCII bytes: 26 for
// each of A0/A1/A2 in order) from the header's alphabet-table address, or
// returns DefaultAlphabets when tableAddr is 0.
func LoadAlphabets(tableAddr uint32, reader func(addr uint32) (uint8, error)) (Alphabets, error) {
	if tableAddr == 0 {
		return DefaultAlphabets, nil
	}
	var a Alphabets
	for i := 0; i < 26; i++ {
		b, err := reader(tableAddr + uint32(i))
		if err != nil {
			return Alphabets{}, err
		}
		a.A0[i] = b
	}
	for i := 0; i < 26; i++ {
		b, err := reader(tableAddr + 26 + uint32(i))
		if err != nil {
			return Alphabets{}, err
		}
		a.A1[i] = b
	}
	for i := 0; i < 26; i++ {
		b, err := reader(tableAddr + 52 + uint32(i))
		if err != nil {
			return Alphabets{}, err
		}
		a.A2[i] = b
	}
	// Decode treats A2 entry 0 (z-char 6) as the escape to 10-bit ZSCII
	// whatever byte a custom table stores there.
	return a, nil
}
