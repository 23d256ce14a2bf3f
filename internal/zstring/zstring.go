package zstring

// ByteReader reads a single byte at an absolute memory address; satisfied
// by *zcore.Memory without zstring importing zcore directly.
type ByteReader func(addr uint32) (uint8, error)

const maxAbbreviationDepth = 1

// AbbreviationReader resolves abbreviation index n (0..95) to the address
// of its Z-string in high memory, per the two-byte word stored in the
// abbreviation table at abbreviationBase + 2*n.
type AbbreviationReader func(n int) (uint32, error)

// Decode reads a Z-string starting at addr and returns the text it decodes
// along with the address immediately after the terminating word (the one
// with the top bit set). abbrev is nil to disable abbreviation expansion,
// which Decode itself does automatically past one level of recursion.
func Decode(addr uint32, version uint8, alphabets Alphabets, unicode UnicodeTable, abbrev AbbreviationReader, read ByteReader) (string, uint32, error) {
	return decode(addr, version, alphabets, unicode, abbrev, read, 0)
}

func readZChars(addr uint32, read ByteReader) ([]uint8, uint32, error) {
	var zchars []uint8
	cur := addr
	for {
		hi, err := read(cur)
		if err != nil {
			return nil, 0, err
		}
		lo, err := read(cur + 1)
		if err != nil {
			return nil, 0, err
		}
		word := uint16(hi)<<8 | uint16(lo)
		cur += 2

		zchars = append(zchars,
			uint8((word>>10)&0x1f),
			uint8((word>>5)&0x1f),
			uint8(word&0x1f),
		)

		if word&0x8000 != 0 {
			break
		}
	}
	return zchars, cur, nil
}

func decode(addr uint32, version uint8, alphabets Alphabets, unicode UnicodeTable, abbrev AbbreviationReader, read ByteReader, depth int) (string, uint32, error) {
	zchars, end, err := readZChars(addr, read)
	if err != nil {
		return "", 0, err
	}

	var out []rune
	shift := 0  // current alphabet for the next letter: 0=A0, 1=A1, 2=A2
	locked := 0 // alphabet a plain letter returns to afterwards (V1/V2 shift-lock)

	for i := 0; i < len(zchars); i++ {
		z := zchars[i]

		switch {
		case z == 0:
			out = append(out, ' ')
			shift = locked

		case z >= 1 && z <= 3:
			// V3+ only: z-chars 1-3 are always abbreviation escapes there.
			// V1 has no abbreviations at all (z==1 is a literal newline,
			// z==2/3 are shifts); V2 only treats z==1 as an abbreviation
			// escape and z==2/3 as shifts. This decoder targets V3/V5/V8:
			// apart from V1's z==1 newline below, it decodes all three as
			// abbreviation escapes in every version.
			if version == 1 && z == 1 {
				out = append(out, '\n')
				shift = locked
				continue
			}
			i++
			if i >= len(zchars) {
				shift = locked
				continue
			}
			idx := int(z-1)*32 + int(zchars[i])
			if abbrev == nil || depth >= maxAbbreviationDepth {
				shift = locked
				continue
			}
			abbrevAddr, err := abbrev(idx)
			if err != nil {
				return "", 0, err
			}
			text, _, err := decode(abbrevAddr, version, alphabets, unicode, nil, read, depth+1)
			if err != nil {
				return "", 0, err
			}
			out = append(out, []rune(text)...)
			shift = locked

		case z == 4:
			if version <= 2 {
				locked = 1
			}
			shift = 1

		case z == 5:
			if version <= 2 {
				locked = 2
			}
			shift = 2

		default:
			if shift == 2 && z == 6 {
				// 10-bit ZSCII escape: next two Z-chars are the top 5 and
				// bottom 5 bits of the code.
				if i+2 >= len(zchars) {
					shift = locked
					continue
				}
				top := zchars[i+1]
				bottom := zchars[i+2]
				i += 2
				zscii := uint16(top)<<5 | uint16(bottom)
				out = append(out, zsciiToRune(zscii, unicode))
				shift = locked
				continue
			}
			if shift == 2 && version <= 2 && z == 7 {
				out = append(out, '\n')
				shift = locked
				continue
			}

			var table *[26]uint8
			switch shift {
			case 0:
				table = &alphabets.A0
			case 1:
				table = &alphabets.A1
			default:
				table = &alphabets.A2
			}
			if idx := int(z) - 6; idx >= 0 && idx < 26 {
				out = append(out, rune(table[idx]))
			}
			shift = locked
		}
	}

	return string(out), end, nil
}

func zsciiToRune(zscii uint16, unicode UnicodeTable) rune {
	if zscii >= 155 {
		if r, ok := unicode.ToRune(zscii); ok {
			return r
		}
	}
	if zscii == 0 {
		return 0
	}
	return rune(zscii)
}
