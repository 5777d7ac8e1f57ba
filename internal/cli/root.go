// Package cli holds the cogscreen cobra commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	projectRoot string
)

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cogscreen",
		Short: "Browser-based cognitive screening tests",
		Long: `cogscreen serves a set of short screening tests (attention, memory,
problem solving and simulated handwriting and speech analysis) and renders
a heuristic report for each.

Run without arguments to start the web server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), projectRoot)
		},
	}
	root.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root containing config/ and assets/")

	root.AddCommand(newServeCmd(), newSimulateCmd(), newVersionCmd())
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
