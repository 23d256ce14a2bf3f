// Package dictionary implements the Z-machine dictionary and the word
// tokenizer used by the read/tokenise opcodes.
package dictionary

import "fmt"

// MemoryAccessor is the subset of zcore.Memory the dictionary needs.
type MemoryAccessor interface {
	GetByte(addr uint32) (uint8, error)
	SetByte(addr uint32, value uint8) error
	GetWord(addr uint32) (uint16, error)
}

// Entry is a single dictionary word: its encoded form (used for
// comparison), its address in the table, and any data bytes following the
// encoded text.
type Entry struct {
	Addr   uint32
	Coded  []uint16
	Data   []uint8
}

// Dictionary is a parsed view of the story's dictionary table.
type Dictionary struct {
	Separators  []uint8
	entrySize   uint8
	entryCount  uint16
	entriesBase uint32
	wordLen     int // 2 words (V1-3) or 3 words (V4+)
	entries     []Entry
}

// Parse reads the dictionary table at base: a separator-count byte, that
// many separator ZSCII codes, an entry-length byte, a 16-bit entry count,
// then that many fixed-size entries in ascending sorted order.
func Parse(mem MemoryAccessor, base uint32, version uint8) (*Dictionary, error) {
	nSeparators, err := mem.GetByte(base)
	if err != nil {
		return nil, err
	}
	separators := make([]uint8, nSeparators)
	for i := uint8(0); i < nSeparators; i++ {
		b, err := mem.GetByte(base + 1 + uint32(i))
		if err != nil {
			return nil, err
		}
		separators[i] = b
	}

	cur := base + 1 + uint32(nSeparators)
	entrySize, err := mem.GetByte(cur)
	if err != nil {
		return nil, err
	}
	cur++
	entryCountWord, err := mem.GetWord(cur)
	if err != nil {
		return nil, err
	}
	cur += 2

	entryCount := entryCountWord
	negative := false
	if int16(entryCountWord) < 0 {
		negative = true
		entryCount = uint16(-int16(entryCountWord))
	}

	wordLen := 2
	if version >= 4 {
		wordLen = 3
	}

	d := &Dictionary{
		Separators:  separators,
		entrySize:   entrySize,
		entryCount:  entryCount,
		entriesBase: cur,
		wordLen:     wordLen,
	}

	// A negative count means entries are unsorted; we still index them
	// linearly, which is correct either way (just not binary-searchable).
	_ = negative

	for i := uint16(0); i < entryCount; i++ {
		addr := cur + uint32(i)*uint32(entrySize)
		coded := make([]uint16, wordLen)
		for w := 0; w < wordLen; w++ {
			word, err := mem.GetWord(addr + uint32(w)*2)
			if err != nil {
				return nil, err
			}
			coded[w] = word
		}
		dataLen := int(entrySize) - wordLen*2
		var data []uint8
		for b := 0; b < dataLen; b++ {
			v, err := mem.GetByte(addr + uint32(wordLen*2+b))
			if err != nil {
				return nil, err
			}
			data = append(data, v)
		}
		d.entries = append(d.entries, Entry{Addr: addr, Coded: coded, Data: data})
	}

	return d, nil
}

// Find returns the dictionary entry whose encoded form matches coded, or
// (Entry{}, false) if the word is unrecognized.
func (d *Dictionary) Find(coded []uint16) (Entry, bool) {
	for _, e := range d.entries {
		if wordsEqual(e.Coded, coded) {
			return e, true
		}
	}
	return Entry{}, false
}

func wordsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsSeparator reports whether ch is one of the dictionary's word-separator
// ZSCII characters (used by the tokenizer to split input into words).
func (d *Dictionary) IsSeparator(ch uint8) bool {
	for _, s := range d.Separators {
		if s == ch {
			return true
		}
	}
	return false
}

// Token is a single word identified by the tokenizer: its ZSCII text
// offset and length within the raw input buffer.
type Token struct {
	Text   string
	Start  int
	Length int
}

// Tokenise splits text into words at whitespace and the dictionary's
// separator characters, per the lexer rules used by the read/tokenise
// opcodes: separators are themselves emitted as single-character tokens.
func Tokenise(text string, d *Dictionary) []Token {
	var tokens []Token
	start := -1

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, Token{Text: text[start:end], Start: start, Length: end - start})
			start = -1
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == ' ':
			flush(i)
		case d.IsSeparator(ch):
			flush(i)
			tokens = append(tokens, Token{Text: string(ch), Start: i, Length: 1})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(text))

	return tokens
}

// WordLen returns the number of 16-bit words in each entry's coded text
// (2 before V4, 3 from V4 on).
func (d *Dictionary) WordLen() int { return d.wordLen }

// String satisfies fmt.Stringer for debugging dumps.
func (d *Dictionary) String() string {
	return fmt.Sprintf("dictionary{entries=%d, separators=%q}", len(d.entries), d.Separators)
}
