package zstring

// DefaultUnicodeTable maps ZSCII codes 155-223 onto the standard Unicode
// translation table from the Z-machine standard, used for print_unicode,
// check_unicode, and text output unless the header's extension table
// supplies a custom translation table.
var DefaultUnicodeTable = [...]rune{
	0xe4, 0xf6, 0xfc, 0xc4, 0xd6, 0xdc, 0xdf, 0xbb, 0xab, 0xeb, 0xef, 0xff,
	0xcb, 0xcf, 0xe1, 0xe9, 0xed, 0xf3, 0xfa, 0xfd, 0xc1, 0xc9, 0xcd, 0xd3,
	0xda, 0xdd, 0xe0, 0xe8, 0xec, 0xf2, 0xf9, 0xc0, 0xc8, 0xcc, 0xd2, 0xd9,
	0xe2, 0xea, 0xee, 0xf4, 0xfb, 0xc2, 0xca, 0xce, 0xd4, 0xdb, 0xe5, 0xc5,
	0xf8, 0xd8, 0xe3, 0xf1, 0xf5, 0xc3, 0xd1, 0xd5, 0xe6, 0xc6, 0xe7, 0xc7,
	0xfe, 0xf0, 0xde, 0xd0, 0xa3, 0x153, 0x152, 0xa1, 0xbf,
}

// UnicodeTable is a ZSCII-155..223 to rune lookup, optionally overridden by
// a custom table read from the extension table.
type UnicodeTable struct {
	runes [69]rune
}

// NewDefaultUnicodeTable returns the translation table built into every
// interpreter absent a custom one.
func NewDefaultUnicodeTable() UnicodeTable {
	var t UnicodeTable
	copy(t.runes[:], DefaultUnicodeTable[:])
	return t
}

// LoadCustomUnicodeTable reads a custom table from the extension table: a
// length byte followed by that many 16-bit unicode code points, replacing
// entries starting at ZSCII 155.
func LoadCustomUnicodeTable(tableAddr uint32, reader func(addr uint32) (uint8, error), readWord func(addr uint32) (uint16, error)) (UnicodeTable, error) {
	t := NewDefaultUnicodeTable()
	if tableAddr == 0 {
		return t, nil
	}
	n, err := reader(tableAddr)
	if err != nil {
		return t, err
	}
	for i := uint8(0); i < n && int(i) < len(t.runes); i++ {
		w, err := readWord(tableAddr + 1 + uint32(i)*2)
		if err != nil {
			return t, err
		}
		t.runes[i] = rune(w)
	}
	return t, nil
}

// ToRune converts a ZSCII code in [155, 223] to its unicode rune. Codes
// outside that range are not handled by this table.
func (t UnicodeTable) ToRune(zscii uint16) (rune, bool) {
	if zscii < 155 || int(zscii-155) >= len(t.runes) {
		return 0, false
	}
	r := t.runes[zscii-155]
	if r == 0 {
		return 0, false
	}
	return r, true
}

// FromRune converts a unicode rune back to its ZSCII code, for keyboard
// input in read/read_char.
func (t UnicodeTable) FromRune(r rune) (uint16, bool) {
	for i, candidate := range t.runes {
		if candidate == r {
			return uint16(155 + i), true
		}
	}
	return 0, false
}
