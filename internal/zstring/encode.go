package zstring

// Encode converts ASCII text into Z-characters packed into 16-bit words,
// padded with 5 (shift-to-A2 pad, conventionally treated as a no-op) and
// truncated/padded to exactly wordCount words, as required for dictionary
// entries (2 words in V1-3, 3 words in V4+). The encoding never expands
// abbreviations; dictionary words are encoded literally.
func Encode(text string, alphabets Alphabets, wordCount int) []uint16 {
	zchars := make([]uint8, 0, wordCount*3)
	for _, r := range text {
		if z, ok := findInAlphabet(alphabets.A0, r); ok {
			zchars = append(zchars, z)
			continue
		}
		if z, ok := findInAlphabet(alphabets.A1, r); ok {
			zchars = append(zchars, 4, z)
			continue
		}
		if z, ok := findInAlphabet(alphabets.A2, r); ok {
			zchars = append(zchars, 5, z)
			continue
		}
		// Fall back to the 10-bit ZSCII escape via A2 slot 6.
		zchars = append(zchars, 5, 6, uint8(r>>5)&0x1f, uint8(r)&0x1f)
	}

	for len(zchars) < wordCount*3 {
		zchars = append(zchars, 5)
	}
	zchars = zchars[:wordCount*3]

	words := make([]uint16, wordCount)
	for w := 0; w < wordCount; w++ {
		a, b, c := zchars[w*3], zchars[w*3+1], zchars[w*3+2]
		words[w] = uint16(a&0x1f)<<10 | uint16(b&0x1f)<<5 | uint16(c&0x1f)
	}
	words[wordCount-1] |= 0x8000
	return words
}

func findInAlphabet(table [26]uint8, r rune) (uint8, bool) {
	for i, c := range table {
		if rune(c) == r {
			return uint8(i + 6), true
		}
	}
	return 0, false
}
