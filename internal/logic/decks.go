package logic

import (
	"fmt"

	"github.com/snapstats/analyzer/internal/models"
)

// ClassifyResult reconciles a match outcome with the sign of its cube delta.
// The outcome index is masked with 2 for a non-negative delta and 3 for a
// negative one:
//
//	outcome       cubes >= 0        cubes < 0
//	SKIP          WIN               WIN
//	resolve       WIN               LOSE
//	opp retreat   OPPONENT RETREAT  OPPONENT RETREAT
//	retreat       OPPONENT RETREAT  RETREAT
func ClassifyResult(outcome models.Outcome, cubes int) models.ResultClass {
	mask := 2
	if cubes < 0 {
		mask = 3
	}
	return models.ResultClass(int(outcome) & mask)
}

// AnalyzeDecks computes win/loss, cube and streak statistics for each of the
// player's decks. Results are keyed by the deck's display name. When two raw
// decks share a display name, the one seen first in the log keeps it and the
// other is keyed by its raw identifier.
func AnalyzeDecks(ds *models.Dataset, names NameResolver) (map[string]models.DeckInsight, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	// Group record indexes by deck, keeping log order within each deck.
	var order []string
	byDeck := make(map[string][]int)
	for i, rec := range ds.Records {
		if _, ok := byDeck[rec.MyDeck]; !ok {
			order = append(order, rec.MyDeck)
		}
		byDeck[rec.MyDeck] = append(byDeck[rec.MyDeck], i)
	}

	insights := make(map[string]models.DeckInsight, len(order))
	for _, deck := range order {
		insight := analyzeDeck(ds.Records, byDeck[deck])
		insight.Deck = deck
		insights[deckKey(insights, resolveName(names, deck), deck)] = insight
	}
	return insights, nil
}

func deckKey(taken map[string]models.DeckInsight, display, raw string) string {
	if _, ok := taken[display]; !ok {
		return display
	}
	if _, ok := taken[raw]; !ok {
		return raw
	}
	return fmt.Sprintf("%s [%s]", display, raw)
}

func analyzeDeck(records []models.MatchRecord, idx []int) models.DeckInsight {
	n := len(idx)
	results := make([]models.ResultClass, n)
	var counts [4]int
	var insight models.DeckInsight

	for i, ri := range idx {
		rec := records[ri]
		results[i] = ClassifyResult(rec.Outcome, rec.Cubes)
		counts[results[i]]++
		insight.NetCubes += rec.Cubes
		if rec.BotBehavior == models.BotYes {
			insight.BotRate++
			insight.BotCubes += rec.Cubes
		}
	}

	games := float64(n)
	insight.SampleSize = n
	insight.WinRate = float64(counts[models.ResultWin]+counts[models.ResultOpponentRetreat]) / games
	insight.LoseRate = float64(counts[models.ResultLose]) / games
	insight.RetreatRate = float64(counts[models.ResultRetreat]) / games
	insight.SpookRate = float64(counts[models.ResultOpponentRetreat]) / games
	insight.CubeRate = float64(insight.NetCubes) / games
	insight.BotRate /= games

	insight.WinStreaks = DetectStreaks(n, func(i int) bool {
		return results[i] == models.ResultWin || results[i] == models.ResultOpponentRetreat
	})
	insight.LoseStreaks = DetectStreaks(n, func(i int) bool {
		return results[i] == models.ResultLose || results[i] == models.ResultRetreat
	})
	return insight
}
