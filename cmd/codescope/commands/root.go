// Package commands implements the codescope CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	configPath   string
	quiet        bool
	outputFormat string
)

const defaultConfigPath = "config.yaml"

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescope",
		Short: "Function-level code search with hybrid keyword and semantic ranking",
		Long: `codescope indexes the functions of a codebase and answers
similarity queries over them.

Functions are stored in SQLite, indexed for keyword search with Bleve,
and embedded into vectors searched by an approximate nearest-neighbor
index (hierarchical k-means, LSH, or a hybrid of both).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Config file path")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table or json)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
