package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Separation is an average number of games between recurrences.
// +Inf means the value was seen only once and is encoded as JSON null.
type Separation float64

// NoRecurrence is the separation of a value observed exactly once.
var NoRecurrence = Separation(math.Inf(1))

func (s Separation) IsInf() bool {
	return math.IsInf(float64(s), 1)
}

func (s Separation) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(s), 0) || math.IsNaN(float64(s)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

func (s *Separation) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoRecurrence
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Separation(f)
	return nil
}

// LocationInsight is one row of the location report.
type LocationInsight struct {
	Location       string     `json:"location"` // display name
	ID             string     `json:"id"`       // raw identifier
	Occurrences    int        `json:"n_occur"`
	AppearanceRate float64    `json:"appearance_rate"`
	AvgSeparation  Separation `json:"avg_sep"`
	Left           int        `json:"loc:left"`
	Middle         int        `json:"loc:middle"`
	Right          int        `json:"loc:right"`
}

// SlotCounts returns the per-slot occurrence counts, left to right.
func (l LocationInsight) SlotCounts() [LocationSlots]int {
	return [LocationSlots]int{l.Left, l.Middle, l.Right}
}

// DeckInsight summarizes every match played with one of the player's decks.
type DeckInsight struct {
	Deck        string      `json:"deck"`
	SampleSize  int         `json:"sample_size"`
	WinRate     float64     `json:"winrate"`
	LoseRate    float64     `json:"loserate"`
	NetCubes    int         `json:"netcubes"`
	CubeRate    float64     `json:"cuberate"`
	RetreatRate float64     `json:"retreatrate"`
	SpookRate   float64     `json:"spookrate"`
	WinStreaks  map[int]int `json:"winstreaks"`
	LoseStreaks map[int]int `json:"losestreaks"`
	BotRate     float64     `json:"botrate"`
	BotCubes    int         `json:"botcubes"`
}

// CardInsight summarizes every appearance of one opponent card.
type CardInsight struct {
	Card           string   `json:"card"` // display name
	ID             string   `json:"id"`
	Appearances    int      `json:"appearances"`
	AppearanceRate float64  `json:"appearance_rate"`
	Archetypes     []string `json:"archetypes"`
	// BotLikelihood is the share of distinct games containing the card
	// where the opponent was not marked as a bot. Repeat sightings in one
	// game count once.
	BotLikelihood  float64  `json:"bot_likelihood"`
}

// CardSort selects one of the two card orderings.
type CardSort string

const (
	SortByName        CardSort = "name"
	SortByAppearances CardSort = "appearances"
)

// ParseCardSort accepts "name" and "appearances" as well as the older
// SORT_NAME and SORT_APPEARANCES spellings.
func ParseCardSort(s string) (CardSort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "sort_name":
		return SortByName, nil
	case "appearances", "sort_appearances", "":
		return SortByAppearances, nil
	}
	return "", fmt.Errorf("unknown card sort %q", s)
}

// CardReport holds per-card insights keyed by raw identifier plus both orderings.
type CardReport struct {
	Cards         map[string]CardInsight `json:"cards"`
	ByName        []string               `json:"sort_name"`
	ByAppearances []string               `json:"sort_appearances"`
}

// Ordered returns the insights in the requested order, truncated to limit
// when limit is positive.
func (c *CardReport) Ordered(sort CardSort, limit int) []CardInsight {
	if c == nil {
		return nil
	}
	keys := c.ByAppearances
	if sort == SortByName {
		keys = c.ByName
	}
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	out := make([]CardInsight, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Cards[k])
	}
	return out
}

// Report bundles the three independent analyses of one dataset.
type Report struct {
	ID          string                 `json:"id"`
	Games       int                    `json:"games"`
	GeneratedAt time.Time              `json:"generated_at"`
	Locations   []LocationInsight      `json:"locations"`
	Decks       map[string]DeckInsight `json:"decks"`
	Cards       *CardReport            `json:"cards"`
}
