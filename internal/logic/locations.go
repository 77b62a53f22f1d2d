package logic

import (
	"sort"

	"github.com/snapstats/analyzer/internal/models"
)

// AnalyzeLocations reports how often each location appears, in which slot,
// and how many games usually pass before it shows up again.
// Rows are ordered by descending occurrence count; ties stay alphabetical.
func AnalyzeLocations(ds *models.Dataset, names NameResolver) ([]models.LocationInsight, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	// Flattened index i addresses game i/3, slot i%3.
	flat := make([]string, 0, len(ds.Records)*models.LocationSlots)
	for _, rec := range ds.Records {
		flat = append(flat, rec.Locations[:]...)
	}

	type tally struct {
		games []int
		slots [models.LocationSlots]int
	}
	byLocation := make(map[string]*tally)
	nonPadding := 0
	for i, loc := range flat {
		if loc == ds.Padding {
			continue
		}
		nonPadding++
		t := byLocation[loc]
		if t == nil {
			t = &tally{}
			byLocation[loc] = t
		}
		game, slot := i/models.LocationSlots, i%models.LocationSlots
		t.games = append(t.games, game)
		t.slots[slot]++
	}

	ids := make([]string, 0, len(byLocation))
	for id := range byLocation {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]models.LocationInsight, 0, len(ids))
	for _, id := range ids {
		t := byLocation[id]
		n := len(t.games)
		rows = append(rows, models.LocationInsight{
			Location:       resolveName(names, id),
			ID:             id,
			Occurrences:    n,
			AppearanceRate: float64(n) / float64(nonPadding),
			AvgSeparation:  averageSeparation(t.games),
			Left:           t.slots[0],
			Middle:         t.slots[1],
			Right:          t.slots[2],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Occurrences > rows[j].Occurrences
	})
	return rows, nil
}

// averageSeparation is the mean gap between consecutive game indices.
// games must be ascending; repeats within one game contribute a gap of 0.
func averageSeparation(games []int) models.Separation {
	if len(games) < 2 {
		return models.NoRecurrence
	}
	return models.Separation(float64(games[len(games)-1]-games[0]) / float64(len(games)-1))
}
