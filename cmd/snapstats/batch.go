package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
	"github.com/snapstats/analyzer/internal/worker"
)

type batchEntry struct {
	Source string                  `json:"source"`
	Error  string                  `json:"error,omitempty"`
	Report *models.AnalyzeResponse `json:"report,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		workers int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "batch SOURCE...",
		Short: "Analyze several match logs independently",
		Long: `batch analyzes each source as its own log on a pool of workers and prints
one summary row per log. Logs are never merged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), a, args, workers, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent analyses")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func runBatch(ctx context.Context, a *app, sources []string, workers int, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q: want text or json", format)
	}

	jobs := make([]worker.Job, 0, len(sources))
	for _, src := range sources {
		l, err := loader.Open(src, loader.Options{})
		if err != nil {
			return err
		}
		jobs = append(jobs, worker.Job{Source: src, Loader: l})
	}

	results := worker.Run(ctx, worker.PoolConfig{
		WorkerCount: workers,
		Normalize:   logic.NormalizeOptions{Padding: a.cfg.Padding, Delimiter: a.cfg.Delimiter},
		Analysis:    logic.NewAnalysisService(nil, a.logger),
		Logger:      a.logger,
	}, jobs)

	failed := 0
	entries := make([]batchEntry, len(results))
	for i, res := range results {
		entries[i].Source = res.Source
		if res.Err != nil {
			failed++
			entries[i].Error = res.Err.Error()
			continue
		}
		resp := models.NewAnalyzeResponse(res.Report, a.cfg.CardSort, a.cfg.LimitCards)
		entries[i].Report = &resp
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	} else if err := writeBatchTable(out, entries); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d logs failed", failed, len(results))
	}
	return nil
}

func writeBatchTable(out io.Writer, entries []batchEntry) error {
	data := pterm.TableData{{"source", "games", "top location", "best deck", "winrate", "error"}}
	for _, e := range entries {
		if e.Report == nil {
			data = append(data, []string{e.Source, "", "", "", "", e.Error})
			continue
		}
		topLocation := ""
		if len(e.Report.Locations) > 0 {
			topLocation = e.Report.Locations[0].Location
		}
		deck, rate := bestDeck(e.Report.Decks)
		data = append(data, []string{
			e.Source,
			strconv.Itoa(e.Report.Games),
			topLocation,
			deck,
			strconv.FormatFloat(rate, 'f', 3, 64),
			"",
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

// bestDeck picks the highest winrate, ties broken by name.
func bestDeck(decks map[string]models.DeckInsight) (string, float64) {
	names := make([]string, 0, len(decks))
	for name := range decks {
		names = append(names, name)
	}
	sort.Strings(names)

	best, rate := "", -1.0
	for _, name := range names {
		if d := decks[name]; d.WinRate > rate {
			best, rate = name, d.WinRate
		}
	}
	if best == "" {
		return "", 0
	}
	return best, rate
}
