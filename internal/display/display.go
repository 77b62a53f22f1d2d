// Package display prints a report as terminal tables.
package display

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/snapstats/analyzer/internal/models"
)

// Options selects which cards are shown and in what order.
type Options struct {
	CardSort   models.CardSort
	LimitCards int // 0 shows every card
}

// Write renders the location, deck and card sections of report to w.
func Write(w io.Writer, report *models.Report, opts Options) error {
	if report == nil {
		return fmt.Errorf("display: nil report")
	}

	sections := []struct {
		title  string
		render func() (string, error)
	}{
		{"LOCATION ANALYSIS", func() (string, error) { return locationTable(report.Locations) }},
		{"DECK ANALYSIS", func() (string, error) { return deckTables(report.Decks) }},
		{"OPPONENT CARD ANALYSIS", func() (string, error) {
			return cardTable(report.Cards.Ordered(opts.CardSort, opts.LimitCards))
		}},
	}

	fmt.Fprint(w, pterm.DefaultHeader.Sprintf("%d games", report.Games))
	fmt.Fprintln(w)
	for _, s := range sections {
		body, err := s.render()
		if err != nil {
			return fmt.Errorf("display %s: %w", strings.ToLower(s.title), err)
		}
		fmt.Fprint(w, pterm.DefaultSection.Sprint(s.title))
		fmt.Fprintln(w, body)
	}
	return nil
}

func locationTable(rows []models.LocationInsight) (string, error) {
	data := pterm.TableData{{"location", "n_occur", "appearance_rate", "avg_sep", "loc:left", "loc:middle", "loc:right"}}
	for _, r := range rows {
		data = append(data, []string{
			r.Location,
			strconv.Itoa(r.Occurrences),
			rate(r.AppearanceRate),
			separation(r.AvgSeparation),
			strconv.Itoa(r.Left),
			strconv.Itoa(r.Middle),
			strconv.Itoa(r.Right),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func deckTables(decks map[string]models.DeckInsight) (string, error) {
	names := make([]string, 0, len(decks))
	for name := range decks {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		d := decks[name]
		table, err := pterm.DefaultTable.WithData(pterm.TableData{
			{"sample_size", strconv.Itoa(d.SampleSize)},
			{"winrate", rate(d.WinRate)},
			{"loserate", rate(d.LoseRate)},
			{"netcubes", strconv.Itoa(d.NetCubes)},
			{"cuberate", rate(d.CubeRate)},
			{"retreatrate", rate(d.RetreatRate)},
			{"spookrate", rate(d.SpookRate)},
			{"winstreaks", streaks(d.WinStreaks)},
			{"losestreaks", streaks(d.LoseStreaks)},
			{"botrate", rate(d.BotRate)},
			{"botcubes", strconv.Itoa(d.BotCubes)},
		}).Srender()
		if err != nil {
			return "", err
		}
		b.WriteString(pterm.Bold.Sprint(name))
		b.WriteString("\n")
		b.WriteString(table)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func cardTable(cards []models.CardInsight) (string, error) {
	data := pterm.TableData{{"card", "appearances", "appearance_rate", "bot_likelihood", "archetypes"}}
	for _, c := range cards {
		data = append(data, []string{
			c.Card,
			strconv.Itoa(c.Appearances),
			rate(c.AppearanceRate),
			rate(c.BotLikelihood),
			strings.Join(c.Archetypes, ", "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func rate(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func separation(s models.Separation) string {
	if s.IsInf() {
		return "inf"
	}
	return strconv.FormatFloat(float64(s), 'f', 2, 64)
}

// streaks formats a length -> count histogram as "1x3 2x1", shortest first.
func streaks(hist map[int]int) string {
	if len(hist) == 0 {
		return "-"
	}
	lengths := make([]int, 0, len(hist))
	for l := range hist {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	parts := make([]string, len(lengths))
	for i, l := range lengths {
		parts[i] = fmt.Sprintf("%dx%d", l, hist[l])
	}
	return strings.Join(parts, " ")
}
