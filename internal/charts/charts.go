// Package charts renders a report as an interactive HTML page.
package charts

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/snapstats/analyzer/internal/models"
)

// Config holds chart sizing and how many cards to plot.
type Config struct {
	Width    string
	Height   string
	Theme    string
	TopCards int
}

func DefaultConfig() Config {
	return Config{
		Width:    "900px",
		Height:   "500px",
		Theme:    "light",
		TopCards: 20,
	}
}

// Render writes a page with location, deck and card charts to w.
func Render(w io.Writer, report *models.Report, cfg Config) error {
	if report == nil {
		return fmt.Errorf("render charts: nil report")
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Match log report (%d games)", report.Games)
	page.AddCharts(
		locationChart(report.Locations, cfg),
		deckChart(report.Decks, cfg),
		cardChart(report.Cards, cfg),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

func newBar(title, subtitle string, cfg Config) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  cfg.Width,
			Height: cfg.Height,
			Theme:  cfg.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
	)
	return bar
}

// locationChart stacks each location's slot counts.
func locationChart(rows []models.LocationInsight, cfg Config) *charts.Bar {
	bar := newBar("Locations", "occurrences by board slot", cfg)

	labels := make([]string, len(rows))
	slots := make([][]opts.BarData, models.LocationSlots)
	for i, row := range rows {
		labels[i] = row.Location
		for s, n := range row.SlotCounts() {
			slots[s] = append(slots[s], opts.BarData{Value: n})
		}
	}

	bar.SetXAxis(labels)
	for s, name := range models.LocationSlotNames {
		bar.AddSeries(name, slots[s])
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "slots"}))
	return bar
}

// deckChart plots win and lose rates per deck, decks in name order.
func deckChart(decks map[string]models.DeckInsight, cfg Config) *charts.Bar {
	bar := newBar("Decks", "win and lose rate", cfg)

	names := make([]string, 0, len(decks))
	for name := range decks {
		names = append(names, name)
	}
	sort.Strings(names)

	wins := make([]opts.BarData, len(names))
	losses := make([]opts.BarData, len(names))
	for i, name := range names {
		wins[i] = opts.BarData{Value: decks[name].WinRate}
		losses[i] = opts.BarData{Value: decks[name].LoseRate}
	}

	bar.SetXAxis(names).
		AddSeries("winrate", wins).
		AddSeries("loserate", losses)
	return bar
}

// cardChart plots the most frequently seen opponent cards.
func cardChart(report *models.CardReport, cfg Config) *charts.Bar {
	bar := newBar("Opponent cards", fmt.Sprintf("top %d by appearances", cfg.TopCards), cfg)

	cards := report.Ordered(models.SortByAppearances, cfg.TopCards)
	labels := make([]string, len(cards))
	data := make([]opts.BarData, len(cards))
	for i, c := range cards {
		labels[i] = c.Card
		data[i] = opts.BarData{Value: c.Appearances}
	}

	bar.SetXAxis(labels).AddSeries("appearances", data)
	return bar
}
