package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultPadding marks an empty positional slot in locations and cards.
const DefaultPadding = "PADDING"

// LocationSlots is the number of board locations in every match.
const LocationSlots = 3

// LocationSlotNames labels the three board positions, left to right.
var LocationSlotNames = [LocationSlots]string{"loc:left", "loc:middle", "loc:right"}

// Outcome is how a match ended. The numeric values matter: result
// classification masks them against the sign of the cube delta.
type Outcome int

const (
	OutcomeSkip Outcome = iota
	OutcomeResolve
	OutcomeOpponentRetreat
	OutcomeRetreat
)

var outcomeNames = [...]string{"SKIP", "resolve", "opp retreat", "retreat"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome accepts the log spelling ("opp retreat") as well as
// snake_case ("opponent_retreat"), case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return OutcomeSkip, nil
	case "resolve":
		return OutcomeResolve, nil
	case "opp retreat", "opponent retreat", "opponent_retreat", "opp_retreat":
		return OutcomeOpponentRetreat, nil
	case "retreat":
		return OutcomeRetreat, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// ParseCubes reads a cube delta. Spreadsheet exports sometimes write "4.0",
// so integral floats are accepted; fractions are rejected because the sign
// of the delta decides the result class.
func ParseCubes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing cube delta")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("cube delta must be a whole number: %q", s)
	}
	return int(f), nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil || n < 0 || n >= len(outcomeNames) {
			return fmt.Errorf("outcome: %s is neither a name nor a valid index", string(data))
		}
		*o = Outcome(n)
		return nil
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// BotBehavior records whether the opponent looked automated.
type BotBehavior int

const (
	BotUnknown BotBehavior = iota
	BotYes
	BotNo
)

func (b BotBehavior) String() string {
	switch b {
	case BotYes:
		return "yes"
	case BotNo:
		return "no"
	default:
		return "unknown"
	}
}

// ParseBotBehavior never fails: anything other than yes/no is unknown.
func ParseBotBehavior(s string) BotBehavior {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return BotYes
	case "no":
		return BotNo
	default:
		return BotUnknown
	}
}

func (b BotBehavior) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BotBehavior) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*b = BotUnknown
		return nil
	}
	*b = ParseBotBehavior(s)
	return nil
}

// ResultClass is the reconciled result of a match from the player's side.
type ResultClass int

const (
	ResultWin ResultClass = iota
	ResultLose
	ResultOpponentRetreat
	ResultRetreat
)

func (r ResultClass) String() string {
	switch r {
	case ResultWin:
		return "WIN"
	case ResultLose:
		return "LOSE"
	case ResultOpponentRetreat:
		return "OPPONENT RETREAT"
	case ResultRetreat:
		return "RETREAT"
	default:
		return fmt.Sprintf("ResultClass(%d)", int(r))
	}
}

// RawRecord is one logged match before its delimited fields are split.
type RawRecord struct {
	Locations        string      `json:"locations"`
	Cards            string      `json:"cards"`
	MyDeck           string      `json:"my deck"`
	OpponentDeck     string      `json:"deck archetype"`
	ArchetypeCertain bool        `json:"archetype certain"`
	Outcome          Outcome     `json:"outcome"`
	Cubes            int         `json:"cubes"`
	BotBehavior      BotBehavior `json:"bot behavior?"`
}

// MatchRecord is a normalized match with fixed-shape positional fields.
type MatchRecord struct {
	Locations        [LocationSlots]string `json:"locations"`
	Cards            []string              `json:"cards"`
	MyDeck           string                `json:"my_deck"`
	OpponentDeck     string                `json:"opponent_deck"`
	ArchetypeCertain bool                  `json:"archetype_certain"`
	Outcome          Outcome               `json:"outcome"`
	Cubes            int                   `json:"cubes"`
	BotBehavior      BotBehavior           `json:"bot_behavior"`
}

// Dataset is a chronologically ordered, normalized match log.
// Every record has CardWidth cards, padded with Padding.
type Dataset struct {
	Records   []MatchRecord `json:"records"`
	Padding   string        `json:"padding"`
	CardWidth int           `json:"card_width"`
}

// Len returns the number of games in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
