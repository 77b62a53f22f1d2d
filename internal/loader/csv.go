package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

// CSVLoader reads a match log exported as CSV with a header row.
type CSVLoader struct {
	path string
}

func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

func (l *CSVLoader) Load(ctx context.Context) ([]models.RawRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open match log: %w", err)
	}
	defer f.Close()
	return ParseCSV(ctx, f)
}

// ParseCSV reads records by header name; extra columns are ignored.
func ParseCSV(ctx context.Context, r io.Reader) ([]models.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, logic.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", c)
		}
	}

	var records []models.RawRecord
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, &logic.MalformedRecordError{Index: row, Field: "*", Reason: perr.Err.Error()}
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(fields) {
				return fields[i]
			}
			return ""
		}
		rec, err := parseRow(row, get)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseRow converts one row of string columns into a typed raw record.
func parseRow(row int, get func(col string) string) (models.RawRecord, error) {
	rec := models.RawRecord{
		Locations:    get(ColLocations),
		Cards:        get(ColCards),
		MyDeck:       strings.TrimSpace(get(ColMyDeck)),
		OpponentDeck: strings.TrimSpace(get(ColDeckArchetype)),
		BotBehavior:  models.ParseBotBehavior(get(ColBotBehavior)),
	}

	outcome, err := models.ParseOutcome(get(ColOutcome))
	if err != nil {
		return rec, &logic.MalformedRecordError{Index: row, Field: ColOutcome, Value: get(ColOutcome), Reason: err.Error()}
	}
	rec.Outcome = outcome

	cubes, err := models.ParseCubes(get(ColCubes))
	if err != nil {
		return rec, &logic.MalformedRecordError{Index: row, Field: ColCubes, Value: get(ColCubes), Reason: err.Error()}
	}
	rec.Cubes = cubes

	if v := strings.TrimSpace(get(ColArchetypeCertain)); v != "" {
		certain, err := models.ParseFlexBool(v)
		if err != nil {
			return rec, &logic.MalformedRecordError{Index: row, Field: ColArchetypeCertain, Value: v, Reason: err.Error()}
		}
		rec.ArchetypeCertain = certain
	}
	return rec, nil
}


// WriteCSV writes records with a header row in the column order ParseCSV
// reads. Unknown bot behavior is written as an empty cell.
func WriteCSV(w io.Writer, records []models.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(logColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range records {
		bot := ""
		if rec.BotBehavior != models.BotUnknown {
			bot = rec.BotBehavior.String()
		}
		row := []string{
			rec.Locations,
			rec.Cards,
			rec.MyDeck,
			rec.Outcome.String(),
			strconv.Itoa(rec.Cubes),
			bot,
			rec.OpponentDeck,
			strconv.FormatBool(rec.ArchetypeCertain),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
