package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/models"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <functions.json>",
		Short: "Load extracted functions and build the search indices",
		Long: `Load a JSON file of extracted functions into storage and rebuild
the keyword and vector indices.

The file holds an array of function records:

  [{"package": "strings", "name": "Split", "signature": "(s, sep string) []string",
    "doc": "...", "file": "strings/strings.go", "start_line": 250, "body": "..."}]

Records without an id are assigned one. Re-indexing a file with the same
ids upserts in place.`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading functions file: %w", err)
	}
	var fns []*models.Function
	if err := json.Unmarshal(data, &fns); err != nil {
		return fmt.Errorf("parsing functions file: %w", err)
	}
	if len(fns) == 0 {
		return fmt.Errorf("no functions in %s", args[0])
	}

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	for _, fn := range fns {
		if fn.ID == "" {
			fn.ID = uuid.NewString()
		}
		if err := app.Storage.SaveFunction(ctx, fn); err != nil {
			return fmt.Errorf("saving function %s: %w", fn.SemanticID(), err)
		}
	}

	if err := app.Engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding indices: %w", err)
	}

	if !quiet {
		stats := app.Engine.IndexStats()
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d functions (%s, %d dimensions)\n",
			len(fns), stats.Algorithm, stats.Dimensions)
	}
	return nil
}
