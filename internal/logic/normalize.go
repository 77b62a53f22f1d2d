package logic

import (
	"fmt"
	"strings"

	"github.com/snapstats/analyzer/internal/models"
)

// NormalizeOptions configures how delimited fields are split.
type NormalizeOptions struct {
	Padding   string
	Delimiter string
}

// DefaultNormalizeOptions matches the match log's own conventions.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{Padding: models.DefaultPadding, Delimiter: ","}
}

// Normalize splits location and card fields into fixed-width positional data.
// Locations are padded to three slots; cards are padded to the widest card
// list in this load, which is stored on the dataset as CardWidth.
func Normalize(records []models.RawRecord, opts NormalizeOptions) (*models.Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	if opts.Padding == "" {
		opts.Padding = models.DefaultPadding
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}

	ds := &models.Dataset{
		Records: make([]models.MatchRecord, len(records)),
		Padding: opts.Padding,
	}

	for i, raw := range records {
		locs, err := splitField(raw.Locations, opts.Delimiter)
		if err != nil {
			return nil, &MalformedRecordError{Index: i, Field: "locations", Value: raw.Locations, Reason: err.Error()}
		}
		if len(locs) > models.LocationSlots {
			return nil, &MalformedRecordError{
				Index:  i,
				Field:  "locations",
				Value:  raw.Locations,
				Reason: "more than 3 locations",
			}
		}

		cards, err := splitField(raw.Cards, opts.Delimiter)
		if err != nil {
			return nil, &MalformedRecordError{Index: i, Field: "cards", Value: raw.Cards, Reason: err.Error()}
		}
		if len(cards) > ds.CardWidth {
			ds.CardWidth = len(cards)
		}

		rec := models.MatchRecord{
			Cards:            cards,
			MyDeck:           raw.MyDeck,
			OpponentDeck:     raw.OpponentDeck,
			ArchetypeCertain: raw.ArchetypeCertain,
			Outcome:          raw.Outcome,
			Cubes:            raw.Cubes,
			BotBehavior:      raw.BotBehavior,
		}
		for slot := range rec.Locations {
			if slot < len(locs) {
				rec.Locations[slot] = locs[slot]
			} else {
				rec.Locations[slot] = opts.Padding
			}
		}
		ds.Records[i] = rec
	}

	for i := range ds.Records {
		ds.Records[i].Cards = pad(ds.Records[i].Cards, ds.CardWidth, opts.Padding)
	}

	normalizedRecords.Add(float64(len(records)))
	return ds, nil
}

// splitField splits on delim and trims tokens. An empty field has no tokens;
// an empty token inside a non-empty field is a stray delimiter.
func splitField(field, delim string) ([]string, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}
	parts := strings.Split(field, delim)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty token at position %d", i)
		}
		parts[i] = p
	}
	return parts, nil
}

func pad(tokens []string, width int, padding string) []string {
	out := make([]string, width)
	n := copy(out, tokens)
	for i := n; i < width; i++ {
		out[i] = padding
	}
	return out
}

// Denormalize joins a dataset's positional fields back into raw records.
// Normalize(Denormalize(ds)) reproduces ds.
func Denormalize(ds *models.Dataset, delim string) []models.RawRecord {
	out := make([]models.RawRecord, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = models.RawRecord{
			Locations:        strings.Join(rec.Locations[:], delim),
			Cards:            strings.Join(rec.Cards, delim),
			MyDeck:           rec.MyDeck,
			OpponentDeck:     rec.OpponentDeck,
			ArchetypeCertain: rec.ArchetypeCertain,
			Outcome:          rec.Outcome,
			Cubes:            rec.Cubes,
			BotBehavior:      rec.BotBehavior,
		}
	}
	return out
}
