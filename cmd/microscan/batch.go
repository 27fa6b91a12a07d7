package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

// batchEntry is one scored report in batch output.
type batchEntry struct {
	File   string              `json:"file"`
	Site   string              `json:"site_name,omitempty"`
	Result *scoring.RiskResult `json:"result"`
}

func newBatchCmd(opts *globalOpts) *cobra.Command {
	var (
		workers int
		failOn  string
	)

	cmd := &cobra.Command{
		Use:   "batch REPORT...",
		Short: "Score algal bloom risk for many sensor reports",
		Long: `Scores every sensor report concurrently and prints the results in argument
order. With --fail-on, exits non-zero when any site reaches the given tier.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}

			var threshold scoring.Tier
			if failOn != "" {
				if threshold, err = scoring.ParseTier(failOn); err != nil {
					return err
				}
			}

			entries, err := scoreReports(cmd.Context(), e.algaeEngine(), args, workers)
			if err != nil {
				return err
			}
			if err := renderBatch(cmd.OutOrStdout(), e, opts.format, entries); err != nil {
				return err
			}

			if failOn == "" {
				return nil
			}
			for _, entry := range entries {
				if entry.Result.Tier >= threshold {
					return fmt.Errorf("%s reached %s risk (score %d)", entry.File, entry.Result.Tier, entry.Result.Score)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of reports scored concurrently")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero if any report reaches this tier (Low, Moderate, High, Critical)")

	return cmd
}

// scoreReports loads and scores each report. The first unreadable report
// cancels the rest.
func scoreReports(ctx context.Context, engine *scoring.Engine, paths []string, workers int) ([]batchEntry, error) {
	entries := make([]batchEntry, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := signal.LoadReport(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			result, err := engine.Score(scoring.Input{Signals: signal.ExtractWaterQuality(rep.Parameters)})
			if err != nil {
				return fmt.Errorf("scoring %s: %w", path, err)
			}
			entries[i] = batchEntry{File: path, Site: rep.SiteName, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Scored %d reports\n", len(entries))
	return entries, nil
}

func renderBatch(w io.Writer, e *env, format string, entries []batchEntry) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	}

	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		label := entry.File
		if entry.Site != "" {
			label = entry.Site + " (" + entry.File + ")"
		}
		fmt.Fprintf(w, "== %s ==\n", label)
		if err := e.render(w, entry.Result); err != nil {
			return err
		}
	}
	return nil
}
