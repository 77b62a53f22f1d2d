package logic

import (
	"testing"

	"github.com/snapstats/analyzer/internal/models"
)

// game is shorthand for one raw match in test logs.
type game struct {
	locs, cards, deck, opp string
	outcome                models.Outcome
	cubes                  int
	bot                    models.BotBehavior
}

func mustNormalize(t *testing.T, games ...game) *models.Dataset {
	t.Helper()
	raws := make([]models.RawRecord, len(games))
	for i, g := range games {
		raws[i] = models.RawRecord{
			Locations:    g.locs,
			Cards:        g.cards,
			MyDeck:       g.deck,
			OpponentDeck: g.opp,
			Outcome:      g.outcome,
			Cubes:        g.cubes,
			BotBehavior:  g.bot,
		}
	}
	ds, err := Normalize(raws, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return ds
}

// mapResolver resolves from a fixed table.
type mapResolver map[string]string

func (m mapResolver) Resolve(raw string) string {
	if nice, ok := m[raw]; ok {
		return nice
	}
	return raw
}
