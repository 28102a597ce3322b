package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/models"
)

var (
	searchLimit    int
	searchMinScore float64
	searchAdaptive bool
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search indexed functions",
		Long: `Search indexed functions with hybrid keyword and semantic ranking.

The query is all positional arguments joined by spaces, so multi-word
queries work with or without quotes.

Examples:
  codescope search parse json config
  codescope search --limit 20 "http retry backoff"
  codescope search --adaptive error wrapping`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results to return")
	cmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "Drop results below this fused score")
	cmd.Flags().BoolVar(&searchAdaptive, "adaptive", false, "Cut off results at the largest similarity gap")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding indices: %w", err)
	}

	query := &models.SearchQuery{
		Query:          strings.TrimSpace(strings.Join(args, " ")),
		Limit:          searchLimit,
		MinScore:       searchMinScore,
		AdaptiveCutoff: searchAdaptive,
	}
	resp, err := app.Engine.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(resp.Results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No functions found for query: %s\n", query.Query)
		}
		return nil
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tFUNCTION\tFILE\n")
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%.3f\t%s\t%s:%d\n",
			r.Score, r.Function.SemanticID(), r.Function.File, r.Function.StartLine)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d results in %dms\n", resp.Total, resp.QueryTime)
	}
	return nil
}
