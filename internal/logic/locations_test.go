package logic

import (
	"errors"
	"math"
	"testing"

	"github.com/snapstats/analyzer/internal/models"
)

func TestAnalyzeLocations_SeparationAndSlots(t *testing.T) {
	// Sanctum shows up in games 2, 5 and 9; Wakanda only once.
	games := make([]game, 10)
	for i := range games {
		games[i] = game{locs: "Atlantis", deck: "Ongoing"}
	}
	games[2].locs = "Atlantis,Sanctum"
	games[5].locs = "Sanctum,Atlantis"
	games[9].locs = "Atlantis,Wakanda,Sanctum"

	ds := mustNormalize(t, games...)
	rows, err := AnalyzeLocations(ds, nil)
	if err != nil {
		t.Fatalf("AnalyzeLocations() error = %v", err)
	}

	byID := make(map[string]models.LocationInsight)
	for _, r := range rows {
		byID[r.ID] = r
	}

	sanctum := byID["Sanctum"]
	if sanctum.Occurrences != 3 {
		t.Errorf("Sanctum n_occur = %d, want 3", sanctum.Occurrences)
	}
	if float64(sanctum.AvgSeparation) != 3.5 {
		t.Errorf("Sanctum avg_sep = %v, want 3.5", sanctum.AvgSeparation)
	}
	if got, want := sanctum.SlotCounts(), [3]int{1, 1, 1}; got != want {
		t.Errorf("Sanctum slots = %v, want %v", got, want)
	}

	if !byID["Wakanda"].AvgSeparation.IsInf() {
		t.Errorf("Wakanda avg_sep = %v, want +Inf", byID["Wakanda"].AvgSeparation)
	}

	atlantis := byID["Atlantis"]
	if atlantis.Occurrences != 10 {
		t.Errorf("Atlantis n_occur = %d, want 10", atlantis.Occurrences)
	}
	if float64(atlantis.AvgSeparation) != 1 {
		t.Errorf("Atlantis avg_sep = %v, want 1", atlantis.AvgSeparation)
	}
}

func TestAnalyzeLocations_RatesReconstructTotal(t *testing.T) {
	ds := mustNormalize(t,
		game{locs: "A,B,C"},
		game{locs: "A,B"},
		game{locs: "C"},
		game{locs: ""},
		game{locs: "D,A,B"},
	)
	rows, err := AnalyzeLocations(ds, nil)
	if err != nil {
		t.Fatalf("AnalyzeLocations() error = %v", err)
	}

	const nonPadding = 9
	occur, rate := 0, 0.0
	for _, r := range rows {
		occur += r.Occurrences
		rate += r.AppearanceRate
		if got := r.AppearanceRate * nonPadding; math.Abs(got-float64(r.Occurrences)) > 1e-9 {
			t.Errorf("%s: rate*N = %v, want %d", r.ID, got, r.Occurrences)
		}
	}
	if occur != nonPadding {
		t.Errorf("sum n_occur = %d, want %d", occur, nonPadding)
	}
	if math.Abs(rate-1) > 1e-9 {
		t.Errorf("sum appearance_rate = %v, want 1", rate)
	}
	for _, r := range rows {
		if r.ID == ds.Padding {
			t.Errorf("padding reported as a location")
		}
	}
}

func TestAnalyzeLocations_OrderIsStableDescending(t *testing.T) {
	ds := mustNormalize(t,
		game{locs: "Zoo,Bar,Mid"},
		game{locs: "Zoo,Bar"},
		game{locs: "Apex"},
	)
	rows, err := AnalyzeLocations(ds, mapResolver{"Zoo": "The Zoo"})
	if err != nil {
		t.Fatalf("AnalyzeLocations() error = %v", err)
	}

	want := []string{"Bar", "Zoo", "Apex", "Mid"}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, id := range want {
		if rows[i].ID != id {
			t.Errorf("row %d = %s, want %s", i, rows[i].ID, id)
		}
	}
	if rows[1].Location != "The Zoo" {
		t.Errorf("display name = %q, want The Zoo", rows[1].Location)
	}
}

func TestAnalyzeLocations_Empty(t *testing.T) {
	if _, err := AnalyzeLocations(&models.Dataset{}, nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("error = %v, want ErrEmptyDataset", err)
	}
}
