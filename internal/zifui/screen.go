package zifui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zifvm/zif/internal/zmachine"
)

// screenBuffer implements zmachine.Screen by rendering directly onto two
// text grids (window 1, the upper window, and window 0, the lower,
// scrolling transcript), the same split the teacher's runStoryModel keeps,
// plus a one-line status text and a resize hook for terminal size changes.
type screenBuffer struct {
	upperRows  []string
	upperStyle []lipgloss.Style
	lowerText  strings.Builder
	lowerStyle lipgloss.Style

	width, height int
	currentWindow int
	cursorX       int
	cursorY       int
	style         zmachine.TextStyle
	statusText    string
}

func newScreenBuffer() *screenBuffer {
	return &screenBuffer{lowerStyle: lipgloss.NewStyle()}
}

func (s *screenBuffer) Print(window int, text string) {
	if window == 1 {
		s.printUpper(text)
		return
	}
	rendered := s.lowerStyle.Render(text)
	s.lowerText.WriteString(rendered)
}

func (s *screenBuffer) printUpper(text string) {
	for _, segment := range strings.Split(text, "\n") {
		if s.cursorY >= 0 && s.cursorY < len(s.upperRows) {
			row := []rune(s.upperRows[s.cursorY])
			for i, r := range segment {
				pos := s.cursorX + i
				if pos >= 0 && pos < len(row) {
					row[pos] = r
				}
			}
			s.upperRows[s.cursorY] = string(row)
		}
		s.cursorX = 0
		s.cursorY++
	}
}

func (s *screenBuffer) Erase(window int) {
	if window == 1 {
		for i := range s.upperRows {
			s.upperRows[i] = strings.Repeat(" ", s.width)
		}
		return
	}
	s.lowerText.Reset()
}

func (s *screenBuffer) EraseAll(unsplitToWindow0 bool) {
	s.lowerText.Reset()
	for i := range s.upperRows {
		s.upperRows[i] = strings.Repeat(" ", s.width)
	}
	if unsplitToWindow0 {
		s.upperRows = nil
	}
}

func (s *screenBuffer) SplitWindow(lines uint16) {
	n := int(lines)
	if n == len(s.upperRows) {
		return
	}
	rows := make([]string, n)
	for i := range rows {
		if i < len(s.upperRows) {
			rows[i] = s.upperRows[i]
		} else {
			rows[i] = strings.Repeat(" ", s.width)
		}
	}
	s.upperRows = rows
}

func (s *screenBuffer) SetWindow(window int) {
	s.currentWindow = window
	s.cursorX, s.cursorY = 0, 0
}

func (s *screenBuffer) SetCursor(line, column uint16) {
	s.cursorY = int(line) - 1
	s.cursorX = int(column) - 1
}

func (s *screenBuffer) SetTextStyle(style zmachine.TextStyle) {
	s.style = style
	st := lipgloss.NewStyle().
		Bold(style&zmachine.StyleBold != 0).
		Italic(style&zmachine.StyleItalic != 0).
		Reverse(style&zmachine.StyleReverseVideo != 0)
	s.lowerStyle = st
}

func (s *screenBuffer) SetColour(foreground, background uint8) {
	// Colour numbers map onto the standard's fixed 2-12 palette; 0/1
	// (current/default) are left alone since this host has no separate
	// "default" concept beyond plain text.
	if fg := paletteHex(foreground); fg != "" {
		s.lowerStyle = s.lowerStyle.Foreground(lipgloss.Color(fg))
	}
	if bg := paletteHex(background); bg != "" {
		s.lowerStyle = s.lowerStyle.Background(lipgloss.Color(bg))
	}
}

func (s *screenBuffer) StatusLine(location string, score string) {
	s.statusText = location + "  " + score
}

func paletteHex(code uint8) string {
	switch code {
	case 2:
		return "#000000"
	case 3:
		return "#ff0000"
	case 4:
		return "#00ff00"
	case 5:
		return "#ffff00"
	case 6:
		return "#0000ff"
	case 7:
		return "#ff00ff"
	case 8:
		return "#00ffff"
	case 9:
		return "#ffffff"
	case 10:
		return "#c0c0c0"
	case 11:
		return "#808080"
	case 12:
		return "#404040"
	default:
		return ""
	}
}

func (s *screenBuffer) reset() {
	s.upperRows = nil
	s.lowerText.Reset()
	s.cursorX, s.cursorY = 0, 0
	s.currentWindow = 0
	s.statusText = ""
}

func (s *screenBuffer) resize(width, height int) {
	s.width = width
	s.height = height
	for i, row := range s.upperRows {
		if len(row) < width {
			s.upperRows[i] = row + strings.Repeat(" ", width-len(row))
		} else if len(row) > width {
			s.upperRows[i] = row[:width]
		}
	}
}
