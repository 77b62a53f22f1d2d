package logic

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/snapstats/analyzer/internal/models"
)

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		outcome models.Outcome
		cubes   int
		want    models.ResultClass
	}{
		{models.OutcomeSkip, 0, models.ResultWin},
		{models.OutcomeSkip, -1, models.ResultWin},
		{models.OutcomeResolve, 2, models.ResultWin},
		{models.OutcomeResolve, 0, models.ResultWin},
		{models.OutcomeResolve, -2, models.ResultLose},
		{models.OutcomeOpponentRetreat, 1, models.ResultOpponentRetreat},
		{models.OutcomeOpponentRetreat, -1, models.ResultOpponentRetreat},
		{models.OutcomeRetreat, 1, models.ResultOpponentRetreat},
		{models.OutcomeRetreat, -1, models.ResultRetreat},
	}

	for _, tt := range tests {
		if got := ClassifyResult(tt.outcome, tt.cubes); got != tt.want {
			t.Errorf("ClassifyResult(%v, %d) = %v, want %v", tt.outcome, tt.cubes, got, tt.want)
		}
	}
}

func TestAnalyzeDecks(t *testing.T) {
	// Ongoing results in order: WIN, OPPONENT RETREAT, LOSE, RETREAT, WIN.
	ds := mustNormalize(t,
		game{locs: "A", deck: "Ongoing", outcome: models.OutcomeResolve, cubes: 4},
		game{locs: "A", deck: "Discard", outcome: models.OutcomeResolve, cubes: -2},
		game{locs: "A", deck: "Ongoing", outcome: models.OutcomeOpponentRetreat, cubes: 2, bot: models.BotYes},
		game{locs: "A", deck: "Ongoing", outcome: models.OutcomeResolve, cubes: -4},
		game{locs: "A", deck: "Ongoing", outcome: models.OutcomeRetreat, cubes: -1, bot: models.BotYes},
		game{locs: "A", deck: "Ongoing", outcome: models.OutcomeResolve, cubes: 8, bot: models.BotNo},
	)

	decks, err := AnalyzeDecks(ds, mapResolver{"Ongoing": "Ongoing Control"})
	if err != nil {
		t.Fatalf("AnalyzeDecks() error = %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("got %d decks, want 2", len(decks))
	}

	ongoing, ok := decks["Ongoing Control"]
	if !ok {
		t.Fatalf("deck not keyed by display name: %v", decks)
	}

	want := models.DeckInsight{
		Deck:        "Ongoing",
		SampleSize:  5,
		WinRate:     3.0 / 5,
		LoseRate:    1.0 / 5,
		NetCubes:    9,
		CubeRate:    9.0 / 5,
		RetreatRate: 1.0 / 5,
		SpookRate:   1.0 / 5,
		WinStreaks:  map[int]int{2: 1, 1: 1},
		LoseStreaks: map[int]int{2: 1},
		BotRate:     2.0 / 5,
		BotCubes:    1,
	}
	if !reflect.DeepEqual(ongoing, want) {
		t.Errorf("Ongoing insight =\n%+v\nwant\n%+v", ongoing, want)
	}

	discard := decks["Discard"]
	if discard.SampleSize != 1 || discard.WinRate != 0 || discard.LoseRate != 1 {
		t.Errorf("Discard insight = %+v", discard)
	}
	if !reflect.DeepEqual(discard.WinStreaks, map[int]int{}) {
		t.Errorf("Discard winstreaks = %v, want empty", discard.WinStreaks)
	}
}

func TestAnalyzeDecks_ResultClassesPartition(t *testing.T) {
	outcomes := []models.Outcome{models.OutcomeSkip, models.OutcomeResolve, models.OutcomeOpponentRetreat, models.OutcomeRetreat}
	var games []game
	for i := 0; i < 40; i++ {
		games = append(games, game{
			locs:    "A",
			deck:    []string{"X", "Y", "Z"}[i%3],
			outcome: outcomes[(i*7)%4],
			cubes:   []int{-8, -2, 0, 1, 4}[(i*3)%5],
		})
	}
	decks, err := AnalyzeDecks(mustNormalize(t, games...), nil)
	if err != nil {
		t.Fatalf("AnalyzeDecks() error = %v", err)
	}

	for name, d := range decks {
		if sum := d.WinRate + d.LoseRate + d.RetreatRate; math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s: winrate+loserate+retreatrate = %v, want 1", name, sum)
		}
		if d.SpookRate > d.WinRate {
			t.Errorf("%s: spookrate %v exceeds winrate %v", name, d.SpookRate, d.WinRate)
		}
	}
}

func TestAnalyzeDecks_DisplayNameCollision(t *testing.T) {
	ds := mustNormalize(t,
		game{locs: "A", deck: "ongoing-v1", outcome: models.OutcomeResolve, cubes: 2},
		game{locs: "A", deck: "ongoing-v2", outcome: models.OutcomeResolve, cubes: -2},
		game{locs: "A", deck: "ongoing-v2", outcome: models.OutcomeResolve, cubes: -1},
	)

	decks, err := AnalyzeDecks(ds, mapResolver{"ongoing-v1": "Ongoing", "ongoing-v2": "Ongoing"})
	if err != nil {
		t.Fatalf("AnalyzeDecks() error = %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("got %d decks, want 2: %v", len(decks), decks)
	}
	if d := decks["Ongoing"]; d.Deck != "ongoing-v1" || d.SampleSize != 1 {
		t.Errorf("Ongoing = %+v, want ongoing-v1 with 1 game", d)
	}
	if d := decks["ongoing-v2"]; d.Deck != "ongoing-v2" || d.SampleSize != 2 {
		t.Errorf("ongoing-v2 = %+v, want 2 games", d)
	}
}

func TestDeckKey(t *testing.T) {
	taken := map[string]models.DeckInsight{"Ongoing": {}, "ongoing-v2": {}}
	tests := []struct {
		display, raw, want string
	}{
		{"Discard", "discard-v1", "Discard"},
		{"Ongoing", "ongoing-v3", "ongoing-v3"},
		{"Ongoing", "ongoing-v2", "Ongoing [ongoing-v2]"},
	}
	for _, tt := range tests {
		if got := deckKey(taken, tt.display, tt.raw); got != tt.want {
			t.Errorf("deckKey(%q, %q) = %q, want %q", tt.display, tt.raw, got, tt.want)
		}
	}
}

func TestAnalyzeDecks_Empty(t *testing.T) {
	if _, err := AnalyzeDecks(&models.Dataset{}, nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("error = %v, want ErrEmptyDataset", err)
	}
}
