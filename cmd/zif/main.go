// Command zif is the zifvm interpreter's command-line entry point: "run"
// plays a story interactively, "fetch" downloads the IF Archive's zcode
// catalog, and "selftest" batch-smoke-tests every story under a directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "zif",
		Short: "zif is a Z-machine interpreter",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newFetchCommand())
	root.AddCommand(newSelftestCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
