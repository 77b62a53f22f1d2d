// Package names maps raw log identifiers to display names.
//
// Reference tables are published as display name -> raw identifier, one table
// per kind (locations, decks, cards). A Table reverses them once at build time.
package names

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Kinds are the reference tables, in lookup order.
var Kinds = []string{"locations", "decks", "cards"}

var unmappedNames = promauto.NewCounter(prometheus.CounterOpts{
	Name: "snapstats_unmapped_names_total",
	Help: "Distinct identifiers with no display name",
})

// Resolver substitutes a display name for a raw identifier.
type Resolver interface {
	Resolve(raw string) string
}

// Identity returns identifiers unchanged.
type Identity struct{}

func (Identity) Resolve(raw string) string { return raw }

// Table resolves raw identifiers through reversed reference tables.
// It is safe for concurrent use.
type Table struct {
	reverse map[string]map[string]string // kind -> raw -> display
	kinds   []string
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	unmapped map[string]struct{}
}

// NewTable builds a resolver from display->raw tables keyed by kind.
// When two display names map to the same raw identifier the alphabetically
// last one wins, so builds are deterministic.
func NewTable(tables map[string]map[string]string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{
		reverse:  make(map[string]map[string]string, len(tables)),
		logger:   logger.Sugar(),
		unmapped: make(map[string]struct{}),
	}

	for _, kind := range orderedKinds(tables) {
		display := make([]string, 0, len(tables[kind]))
		for d := range tables[kind] {
			display = append(display, d)
		}
		sort.Strings(display)

		rev := make(map[string]string, len(display))
		for _, d := range display {
			rev[tables[kind][d]] = d
		}
		t.reverse[kind] = rev
		t.kinds = append(t.kinds, kind)
	}
	return t
}

// orderedKinds lists the well-known kinds first, then any others sorted.
func orderedKinds(tables map[string]map[string]string) []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, k := range Kinds {
		if _, ok := tables[k]; ok {
			kinds = append(kinds, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range tables {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(kinds, extra...)
}

// Resolve returns the display name for raw, or raw itself when no table maps
// it. Each unmapped identifier is logged once.
func (t *Table) Resolve(raw string) string {
	for _, kind := range t.kinds {
		if display, ok := t.reverse[kind][raw]; ok {
			return display
		}
	}

	t.mu.Lock()
	_, warned := t.unmapped[raw]
	if !warned {
		t.unmapped[raw] = struct{}{}
	}
	t.mu.Unlock()

	if !warned {
		unmappedNames.Inc()
		t.logger.Warnw("Could not find display name", "id", raw)
	}
	return raw
}

// Unmapped returns the identifiers that had no display name, sorted.
func (t *Table) Unmapped() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.unmapped))
	for raw := range t.unmapped {
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of raw identifiers with a display name.
func (t *Table) Len() int {
	n := 0
	for _, rev := range t.reverse {
		n += len(rev)
	}
	return n
}
