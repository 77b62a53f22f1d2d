package logic

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/snapstats/analyzer/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAnalysisService_Analyze(t *testing.T) {
	ds := mustNormalize(t,
		game{locs: "Sanctum,Atlantis", cards: "Hulk", deck: "Ongoing", opp: "Zoo", outcome: models.OutcomeResolve, cubes: 2},
		game{locs: "Sanctum", cards: "Hulk,Wong", deck: "Discard", opp: "Ramp", outcome: models.OutcomeRetreat, cubes: -1},
	)

	svc := NewAnalysisService(mapResolver{"Hulk": "The Incredible Hulk"}, zap.NewNop())
	report, err := svc.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.ID == "" {
		t.Error("report has no ID")
	}
	if report.Games != 2 {
		t.Errorf("Games = %d, want 2", report.Games)
	}
	if len(report.Locations) != 2 || report.Locations[0].ID != "Sanctum" {
		t.Errorf("Locations = %+v", report.Locations)
	}
	if len(report.Decks) != 2 {
		t.Errorf("Decks = %+v", report.Decks)
	}
	if got := report.Cards.Cards["Hulk"].Card; got != "The Incredible Hulk" {
		t.Errorf("Hulk display name = %q", got)
	}
}

func TestAnalysisService_WarnsOnDeckNameCollision(t *testing.T) {
	ds := mustNormalize(t,
		game{locs: "A", deck: "ongoing-v1", outcome: models.OutcomeResolve, cubes: 1},
		game{locs: "A", deck: "ongoing-v2", outcome: models.OutcomeResolve, cubes: 1},
	)
	core, logs := observer.New(zap.WarnLevel)
	svc := NewAnalysisService(mapResolver{"ongoing-v1": "Ongoing", "ongoing-v2": "Ongoing"}, zap.New(core))

	report, err := svc.Analyze(context.Background(), ds)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Decks) != 2 {
		t.Errorf("Decks = %+v, want both decks", report.Decks)
	}
	warnings := logs.FilterMessage("Deck display name already taken, keyed by raw id").All()
	if len(warnings) != 1 || warnings[0].ContextMap()["deck"] != "ongoing-v2" {
		t.Errorf("warnings = %+v, want one for ongoing-v2", warnings)
	}
}

func TestAnalysisService_EmptyDataset(t *testing.T) {
	svc := NewAnalysisService(nil, nil)
	if _, err := svc.Analyze(context.Background(), &models.Dataset{}); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("error = %v, want ErrEmptyDataset", err)
	}
}

func TestAnalysisService_CanceledContext(t *testing.T) {
	ds := mustNormalize(t, game{locs: "A", cards: "B", deck: "C"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAnalysisService(nil, zap.NewNop())
	if _, err := svc.Analyze(ctx, ds); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
