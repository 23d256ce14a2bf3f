package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zifvm/zif/internal/zmachine"
)

// testResult captures the outcome of running a single story to its first
// suspend point, same shape as the teacher's cmd/gametest TestResult.
type testResult struct {
	Filename     string   `json:"filename"`
	Version      uint8    `json:"version"`
	Success      bool     `json:"success"`
	PanicMessage string   `json:"panic_message,omitempty"`
	FirstScreen  []string `json:"first_screen,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

func newSelftestCommand() *cobra.Command {
	var storiesDir, outputDir, singleGame string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Batch-run every story under a directory and report pass/fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if singleGame != "" {
				result := runGameTest(singleGame)
				printResult(result)
				return nil
			}
			return runAllGames(storiesDir, outputDir)
		},
	}
	cmd.Flags().StringVar(&storiesDir, "stories", "stories", "directory containing Z-machine story files")
	cmd.Flags().StringVar(&outputDir, "output", "testdata", "directory to write results to")
	cmd.Flags().StringVar(&singleGame, "game", "", "test a single story file instead of a whole directory")
	return cmd
}

func runAllGames(storiesDir, outputDir string) error {
	if _, err := os.Stat(storiesDir); os.IsNotExist(err) {
		return fmt.Errorf("stories directory %q not found; run 'zif fetch' first", storiesDir)
	}

	entries, err := os.ReadDir(storiesDir)
	if err != nil {
		return fmt.Errorf("reading stories directory: %w", err)
	}

	var games []string
	for _, entry := range entries {
		if isStoryFile(entry.Name()) {
			games = append(games, filepath.Join(storiesDir, entry.Name()))
		}
	}
	if len(games) == 0 {
		return fmt.Errorf("no story files found in %s", storiesDir)
	}

	fmt.Printf("Found %d games to test\n", len(games))

	results := make([]testResult, 0, len(games))
	for i, path := range games {
		result := runGameTest(path)
		results = append(results, result)

		status := "PASS"
		if !result.Success {
			status = "FAIL"
		}
		fmt.Printf("[%d/%d] %s %s\n", i+1, len(games), status, result.Filename)
		if !result.Success && result.ErrorMessage != "" {
			fmt.Printf("        error: %s\n", result.ErrorMessage)
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	resultsJSON, _ := json.MarshalIndent(results, "", "  ")
	resultsPath := filepath.Join(outputDir, "test_results.json")
	if err := os.WriteFile(resultsPath, resultsJSON, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	passed := 0
	for _, r := range results {
		if r.Success {
			passed++
		}
	}
	fmt.Printf("\nPassed: %d, Failed: %d, Total: %d\n", passed, len(results)-passed, len(results))
	fmt.Printf("Results written to %s\n", resultsPath)
	return nil
}

func isStoryFile(name string) bool {
	for v := '1'; v <= '8'; v++ {
		if strings.HasSuffix(name, ".z"+string(v)) {
			return true
		}
	}
	return false
}

func printResult(result testResult) {
	fmt.Printf("Game: %s\n", result.Filename)
	fmt.Printf("Version: %d\n", result.Version)
	fmt.Printf("Success: %v\n", result.Success)
	if result.PanicMessage != "" {
		fmt.Printf("Panic: %s\n", result.PanicMessage)
	}
	if result.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", result.ErrorMessage)
	}
	fmt.Printf("First screen:\n%s\n", strings.Join(result.FirstScreen, "\n"))
}

// captureScreen is a headless zmachine.Screen that records printed text from
// every window as plain lines, enough to capture a story's opening screen
// without a terminal.
type captureScreen struct {
	lines []string
	cur   strings.Builder
}

func (s *captureScreen) Print(window int, text string) {
	for _, r := range text {
		if r == '\n' {
			s.lines = append(s.lines, s.cur.String())
			s.cur.Reset()
			continue
		}
		s.cur.WriteRune(r)
	}
}
func (s *captureScreen) Erase(window int)                        {}
func (s *captureScreen) EraseAll(unsplitToWindow0 bool)          {}
func (s *captureScreen) SplitWindow(lines uint16)                {}
func (s *captureScreen) SetWindow(window int)                    {}
func (s *captureScreen) SetCursor(line, column uint16)           {}
func (s *captureScreen) SetTextStyle(style zmachine.TextStyle)   {}
func (s *captureScreen) SetColour(foreground, background uint8)  {}
func (s *captureScreen) StatusLine(location string, score string) {}

func (s *captureScreen) flush() []string {
	if s.cur.Len() > 0 {
		s.lines = append(s.lines, s.cur.String())
		s.cur.Reset()
	}
	return s.lines
}

// runGameTest loads a story and steps it until it first suspends on input
// (its opening screen has been drawn), quits on its own, or faults. Unlike
// the teacher's gametest, there is no goroutine/timeout race to manage:
// Resume is synchronous and always returns.
func runGameTest(gamePath string) (result testResult) {
	filename := filepath.Base(gamePath)
	result.Filename = filename

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.PanicMessage = fmt.Sprintf("%v\n%s", r, debug.Stack())
		}
	}()

	storyBytes, err := os.ReadFile(gamePath)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("reading file: %v", err)
		return
	}
	if len(storyBytes) < 64 {
		result.ErrorMessage = "file too small to be a valid Z-machine story"
		return
	}
	result.Version = storyBytes[0]

	interp, err := zmachine.NewInterpreter(storyBytes)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("loading story: %v", err)
		return
	}
	screen := &captureScreen{}
	interp.Engine.Screen = screen

	if err := interp.Start(); err != nil {
		result.ErrorMessage = fmt.Sprintf("starting story: %v", err)
		return
	}

	sig, err := interp.Resume()
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("running story: %v", err)
		return
	}

	switch sig.Kind {
	case zmachine.SigSuspended, zmachine.SigQuit, zmachine.SigRestart:
		result.Success = true
		result.FirstScreen = screen.flush()
	default:
		result.ErrorMessage = "story did not reach its first suspend point"
	}
	return
}
