package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zifvm/zif/internal/zifui"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <story-file>",
		Short: "Play a Z-machine story interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			romPath := args[0]
			data, err := os.ReadFile(romPath)
			if err != nil {
				return fmt.Errorf("reading story file: %w", err)
			}

			model, err := zifui.New(data, romPath)
			if err != nil {
				return fmt.Errorf("loading story: %w", err)
			}

			program := tea.NewProgram(model)
			_, err = program.Run()
			return err
		},
	}
	return cmd
}
