package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	statsSnapshots int
	statsSnapshot  bool
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Rebuild the search indices from storage and print statistics about
the approximate nearest-neighbor index: algorithm, vector counts,
cluster and table counts, and cache usage.

With --snapshot the stats are also persisted; --snapshots lists
previously saved snapshots.`,
		RunE: runStats,
	}

	cmd.Flags().BoolVar(&statsSnapshot, "snapshot", false, "Persist a snapshot of the current stats")
	cmd.Flags().IntVar(&statsSnapshots, "snapshots", 0, "List the N most recent saved snapshots")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if statsSnapshots > 0 {
		snaps, err := app.Storage.ListStatsSnapshots(ctx, statsSnapshots)
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		if outputFormat == "json" {
			data, err := json.MarshalIndent(snaps, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "CREATED\tALGORITHM\tVECTORS\tCLUSTERS\tTABLES\n")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				s.CreatedAt.Format("2006-01-02 15:04:05"),
				s.Stats.Algorithm, s.Stats.TotalVectors,
				s.Stats.ClusterCount, s.Stats.TableCount)
		}
		return w.Flush()
	}

	if err := app.Engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding indices: %w", err)
	}

	if statsSnapshot {
		snap, err := app.Engine.SnapshotStats(ctx)
		if err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s\n", snap.ID)
		}
	}

	stats := app.Engine.IndexStats()
	if outputFormat == "json" {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Algorithm:      %s\n", stats.Algorithm)
	fmt.Fprintf(out, "Vectors:        %d\n", stats.TotalVectors)
	fmt.Fprintf(out, "Dimensions:     %d\n", stats.Dimensions)
	if stats.ClusterCount > 0 {
		fmt.Fprintf(out, "Clusters:       %d (built in %d iterations)\n", stats.ClusterCount, stats.Iterations)
	}
	if stats.TableCount > 0 {
		fmt.Fprintf(out, "Hash tables:    %d (%d buckets)\n", stats.TableCount, stats.BucketCount)
	}
	fmt.Fprintf(out, "Cache:          %d/%d entries\n", stats.CacheEntries, stats.CacheCapacity)
	return nil
}
