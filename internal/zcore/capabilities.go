package zcore

// InitCapabilities stamps the header fields the interpreter itself is
// responsible for, rather than the story file: interpreter identity, screen
// geometry, claimed standard revision, and the capability flags describing
// what this host can actually do. Grounded on the teacher's LoadCore, which
// performs the identical stamp at load time.
func (m *Memory) InitCapabilities(screenWidthChars, screenHeightLines uint8) {
	m.ForceSetByte(0x1e, 0x06) // interpreter number: IBM PC, closest available match
	m.ForceSetByte(0x1f, 0x01) // interpreter version

	m.ForceSetByte(0x20, screenHeightLines)
	m.ForceSetByte(0x21, screenWidthChars)
	m.ForceSetWord(0x22, uint16(screenWidthChars))
	m.ForceSetWord(0x24, uint16(screenHeightLines))
	m.ForceSetByte(0x26, 1) // font height in units
	m.ForceSetByte(0x27, 1) // font width in units

	m.ForceSetByte(0x32, 0x01) // standard revision major
	m.ForceSetByte(0x33, 0x02) // standard revision minor

	if m.Version <= 3 {
		m.ForceSetByte(0x01, m.Flags1|0b0010_0000) // split-screen available
	} else {
		// colors (0x01), bold (0x04), italic (0x08), split screen (0x20).
		// Not claimed: pictures (0x02), fixed-width default (0x10), timed input (0x80).
		m.ForceSetByte(0x01, m.Flags1|0b0010_1101)
	}
	m.Flags1, _ = m.GetByte(0x01)
}
