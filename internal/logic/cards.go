package logic

import (
	"sort"

	"github.com/snapstats/analyzer/internal/models"
)

// AnalyzeCards reports how often each opponent card was seen, against which
// archetypes, and how likely the opponent was a bot when it showed up.
// bot_likelihood is computed per distinct game, not per appearance.
func AnalyzeCards(ds *models.Dataset, names NameResolver) (*models.CardReport, error) {
	games := ds.Len()
	if games == 0 {
		return nil, ErrEmptyDataset
	}

	flat := make([]string, 0, games*ds.CardWidth)
	for _, rec := range ds.Records {
		flat = append(flat, rec.Cards...)
	}
	cardsPerGame := len(flat) / games

	type tally struct {
		appearances int
		games       []int // distinct, ascending
	}
	byCard := make(map[string]*tally)
	for i, card := range flat {
		if card == ds.Padding {
			continue
		}
		t := byCard[card]
		if t == nil {
			t = &tally{}
			byCard[card] = t
		}
		t.appearances++
		game := i / cardsPerGame
		if n := len(t.games); n == 0 || t.games[n-1] != game {
			t.games = append(t.games, game)
		}
	}

	report := &models.CardReport{
		Cards:  make(map[string]models.CardInsight, len(byCard)),
		ByName: make([]string, 0, len(byCard)),
	}
	for card := range byCard {
		report.ByName = append(report.ByName, card)
	}
	sort.Strings(report.ByName)

	for _, card := range report.ByName {
		t := byCard[card]
		archetypes := make(map[string]struct{})
		notBot := 0
		for _, g := range t.games {
			rec := ds.Records[g]
			archetypes[resolveName(names, rec.OpponentDeck)] = struct{}{}
			if rec.BotBehavior != models.BotNo {
				notBot++
			}
		}

		report.Cards[card] = models.CardInsight{
			Card:           resolveName(names, card),
			ID:             card,
			Appearances:    t.appearances,
			AppearanceRate: float64(t.appearances) / float64(games),
			Archetypes:     sortedKeys(archetypes),
			BotLikelihood:  float64(notBot) / float64(len(t.games)),
		}
	}

	report.ByAppearances = append([]string(nil), report.ByName...)
	sort.SliceStable(report.ByAppearances, func(i, j int) bool {
		return report.Cards[report.ByAppearances[i]].Appearances > report.Cards[report.ByAppearances[j]].Appearances
	})
	return report, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
