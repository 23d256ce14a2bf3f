// Package zifui is the bubbletea terminal host for the zmachine engine: it
// implements the Screen port and drives an Interpreter's
// Start/Resume/DeliverInput state machine from the tea.Model event loop,
// the same division of labour as the teacher's main.go runStoryModel, but
// driven synchronously through Signal instead of over goroutine channels.
package zifui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zifvm/zif/internal/zmachine"
)

type resumeResultMsg struct {
	sig zmachine.Signal
	err error
}

// Model is the top-level bubbletea model for "zif run".
type Model struct {
	interp  *zmachine.Interpreter
	screen  *screenBuffer
	romPath string

	width, height int
	input         textinput.Model
	waitingLine   bool
	waitingChar   bool
	fatalErr      error
}

// New constructs a Model ready to run storyBytes, loaded via
// zmachine.NewInterpreter (which transparently unwraps a Blorb container).
func New(storyBytes []byte, romPath string) (Model, error) {
	interp, err := zmachine.NewInterpreter(storyBytes)
	if err != nil {
		return Model{}, err
	}
	screen := newScreenBuffer()
	interp.Engine.Screen = screen
	interp.Engine.Storage = newFileStorage(romPath)
	interp.Engine.SaveName = defaultSaveFilename(romPath)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.Focus()

	return Model{
		interp:  interp,
		screen:  screen,
		romPath: romPath,
		input:   ti,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.start())
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		if err := m.interp.Start(); err != nil {
			return resumeResultMsg{err: err}
		}
		sig, err := m.interp.Resume()
		printWarnings(m.interp)
		return resumeResultMsg{sig: sig, err: err}
	}
}

func (m Model) resume() tea.Cmd {
	return func() tea.Msg {
		sig, err := m.interp.Resume()
		printWarnings(m.interp)
		return resumeResultMsg{sig: sig, err: err}
	}
}

// printWarnings surfaces non-fatal engine anomalies to stderr, same
// treatment as the teacher's warningMessage case: the story keeps running,
// the player never sees it, but it's there for whoever is debugging.
func printWarnings(interp *zmachine.Interpreter) {
	for _, w := range interp.Engine.Warnings() {
		fmt.Fprintln(os.Stderr, w.Error())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.resize(msg.Width, msg.Height)
		return m, nil

	case resumeResultMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		switch msg.sig.Kind {
		case zmachine.SigQuit:
			return m, tea.Quit
		case zmachine.SigRestart:
			m.screen.reset()
			m.screen.resize(m.width, m.height)
			return m, m.resume()
		case zmachine.SigSuspended:
			switch msg.sig.Input.Kind {
			case zmachine.InputChar:
				m.waitingChar = true
			default:
				m.waitingLine = true
				m.input.SetValue("")
			}
			return m, nil
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.waitingChar {
			m.waitingChar = false
			ch := keyToZSCII(msg)
			if err := m.interp.DeliverChar(ch); err != nil {
				m.fatalErr = err
				return m, tea.Quit
			}
			return m, m.resume()
		}
		if m.waitingLine {
			if msg.Type == tea.KeyEnter {
				text := m.input.Value()
				m.screen.Print(0, text+"\n")
				m.waitingLine = false
				if err := m.interp.DeliverInput(text); err != nil {
					m.fatalErr = err
					return m, tea.Quit
				}
				return m, m.resume()
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// keyToZSCII maps a bubbletea key event to a Z-machine input character
// code, per section 3.8 of the standard's input-character table.
func keyToZSCII(msg tea.KeyMsg) uint16 {
	switch msg.Type {
	case tea.KeyUp:
		return 129
	case tea.KeyDown:
		return 130
	case tea.KeyLeft:
		return 131
	case tea.KeyRight:
		return 132
	case tea.KeyEnter:
		return 13
	case tea.KeyDelete, tea.KeyBackspace:
		return 8
	case tea.KeyEscape:
		return 27
	default:
		if len(msg.Runes) > 0 {
			return uint16(msg.Runes[0])
		}
		return 0
	}
}

func (m Model) View() string {
	if m.fatalErr != nil {
		return fmt.Sprintf("\nzif: %v\n", m.fatalErr)
	}
	if m.width == 0 {
		return "Loading...\n"
	}

	var b strings.Builder
	for _, row := range m.screen.upperRows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	if m.screen.statusText != "" {
		statusStyle := lipgloss.NewStyle().Reverse(true).Width(m.width)
		b.WriteString(statusStyle.Render(m.screen.statusText))
		b.WriteByte('\n')
	}

	lower := wordwrap.String(m.screen.lowerText.String(), m.width)
	lowerLines := strings.Split(lower, "\n")
	maxLower := m.height - len(m.screen.upperRows) - 2
	if maxLower > 0 && len(lowerLines) > maxLower {
		lowerLines = lowerLines[len(lowerLines)-maxLower:]
	}
	b.WriteString(strings.Join(lowerLines, "\n"))

	if m.waitingLine {
		b.WriteString("\n" + m.input.View())
	}
	return b.String()
}

// defaultSaveFilename derives a save filename from the loaded ROM path,
// mirroring the teacher's runStoryModel.defaultSaveFilename.
func defaultSaveFilename(romPath string) string {
	if romPath == "" {
		return "game.sav"
	}
	base := filepath.Base(romPath)
	ext := filepath.Ext(base)
	if len(ext) >= 2 && (ext[1] == 'z' || ext[1] == 'Z') {
		base = base[:len(base)-len(ext)]
	}
	return base + ".sav"
}
