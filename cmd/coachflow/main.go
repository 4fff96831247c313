// Command coachflow is a small CLI for driving coaching conversations
// against the configured model and the built-in toolset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "coachflow",
		Short:         "Tool-augmented coaching conversations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	cmd.AddCommand(newChatCmd(&configPath))
	cmd.AddCommand(newToolsCmd(&configPath))

	return cmd
}
