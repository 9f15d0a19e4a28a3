// go_harvest — research and recording-sync MCP server.
//
// Exposes deep_research, multi_angle_search and recording_sync as MCP tools
// and the same operations as CLI subcommands.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("go_harvest failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "go_harvest",
		Short:         "Multi-angle research and recording sync",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newSyncCommand(), newResearchCommand())
	return root
}
