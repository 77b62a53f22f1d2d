package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/snapstats/analyzer/internal/charts"
	"github.com/snapstats/analyzer/internal/display"
	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
	"github.com/snapstats/analyzer/internal/names"
)

type analyzeOptions struct {
	file       string
	padding    string
	delimiter  string
	cardSort   string
	limitCards int
	niceNames  bool
	nameFiles  []string
	namesRedis string
	format     string
	chart      string
	table      string
	orderBy    string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	o := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a match log and print the report",
		Example: `  snapstats analyze --file matches.csv --nice-names --limit-cards 20
  snapstats analyze --file sqlite://snap.db --format json
  snapstats analyze --file postgres://snap@localhost/snap --table log --chart report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyAnalyzeFlags(cmd, a, o)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), a, o, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "Match log: a .csv/.json path or a database DSN (default: DATABASE_URL)")
	f.StringVar(&o.padding, "padding", models.DefaultPadding, "Padding token for locations and cards")
	f.StringVar(&o.delimiter, "delimiter", ",", "Separator inside the locations and cards fields")
	f.StringVar(&o.cardSort, "card-sort", string(models.SortByAppearances), "Order for card data: name or appearances")
	f.IntVar(&o.limitCards, "limit-cards", 0, "Maximum number of cards to display (0 = all)")
	f.BoolVar(&o.niceNames, "nice-names", false, "Replace raw identifiers with display names")
	f.StringSliceVar(&o.nameFiles, "names", nil, "Name table files (.json, .toml, .yaml)")
	f.StringVar(&o.namesRedis, "names-redis", "", "Redis URL holding names:* hashes (default: REDIS_URL)")
	f.StringVar(&o.format, "format", "text", "Output format: text or json")
	f.StringVar(&o.chart, "chart", "", "Also write an HTML chart page to this path")
	f.StringVar(&o.table, "table", "", "Table holding the log for database sources (default: matches)")
	f.StringVar(&o.orderBy, "order-by", "", "Chronological column for database sources (default: id)")
	return cmd
}

// applyAnalyzeFlags lets explicitly set flags override the environment.
func applyAnalyzeFlags(cmd *cobra.Command, a *app, o *analyzeOptions) {
	f := cmd.Flags()
	if f.Changed("padding") {
		a.cfg.Padding = o.padding
	}
	if f.Changed("delimiter") {
		a.cfg.Delimiter = o.delimiter
	}
	if f.Changed("card-sort") {
		sort, err := models.ParseCardSort(o.cardSort)
		if err != nil {
			// Validate reports it.
			sort = models.CardSort(o.cardSort)
		}
		a.cfg.CardSort = sort
	}
	if f.Changed("limit-cards") {
		a.cfg.LimitCards = o.limitCards
	}
	if f.Changed("names") {
		a.cfg.NamesFiles = o.nameFiles
	}
	if f.Changed("names-redis") {
		a.cfg.RedisURL = o.namesRedis
	}
}

func runAnalyze(ctx context.Context, a *app, o *analyzeOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := a.logger.Sugar()

	src, err := openSource(a, o)
	if err != nil {
		return err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load match log: %w", err)
	}
	log.Debugw("Loaded match log", "records", len(records))

	ds, err := logic.Normalize(records, logic.NormalizeOptions{
		Padding:   a.cfg.Padding,
		Delimiter: a.cfg.Delimiter,
	})
	if err != nil {
		return err
	}

	var resolver logic.NameResolver = names.Identity{}
	if o.niceNames {
		var rdb names.RedisClient
		if a.cfg.RedisURL != "" {
			client, err := openRedis(ctx, a.cfg.RedisURL)
			if err != nil {
				return err
			}
			defer client.Close()
			rdb = client
		}
		resolver, err = buildResolver(ctx, a.cfg.NamesFiles, rdb, a.logger)
		if err != nil {
			return err
		}
	}

	report, err := logic.NewAnalysisService(resolver, a.logger).Analyze(ctx, ds)
	if err != nil {
		return err
	}

	switch o.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(models.NewAnalyzeResponse(report, a.cfg.CardSort, a.cfg.LimitCards)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	case "text", "":
		if err := display.Write(out, report, display.Options{
			CardSort:   a.cfg.CardSort,
			LimitCards: a.cfg.LimitCards,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q: want text or json", o.format)
	}

	if o.chart != "" {
		if err := writeChart(o.chart, report, a.cfg.LimitCards); err != nil {
			return err
		}
		log.Infow("Wrote chart page", "path", o.chart)
	}
	return nil
}

func openSource(a *app, o *analyzeOptions) (loader.Loader, error) {
	opts := loader.Options{Table: o.table, OrderBy: o.orderBy}
	switch {
	case o.file != "":
		return loader.Open(o.file, opts)
	case a.cfg.DatabaseURL != "":
		return loader.OpenDriver(a.cfg.DatabaseDriver, a.cfg.DatabaseURL, opts)
	}
	return nil, fmt.Errorf("no match log: pass --file or set DATABASE_DRIVER and DATABASE_URL")
}

func writeChart(path string, report *models.Report, limit int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	cfg := charts.DefaultConfig()
	if limit > 0 {
		cfg.TopCards = limit
	}
	return charts.Render(f, report, cfg)
}
