package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

// JSONLoader reads a match log stored as a JSON array of records.
type JSONLoader struct {
	path string
}

func NewJSONLoader(path string) *JSONLoader {
	return &JSONLoader{path: path}
}

func (l *JSONLoader) Load(ctx context.Context) ([]models.RawRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open match log: %w", err)
	}
	defer f.Close()
	return ParseJSON(ctx, f)
}

// ParseJSON decodes an array of records one element at a time so a bad
// element can be reported by position.
func ParseJSON(ctx context.Context, r io.Reader) ([]models.RawRecord, error) {
	src := &trackingReader{r: r}
	dec := json.NewDecoder(src)
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, logic.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("match log must be a JSON array")
	}

	var records []models.RawRecord
	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var elem json.RawMessage
		if err := dec.Decode(&elem); err != nil {
			if src.err != nil {
				return nil, fmt.Errorf("read json: %w", src.err)
			}
			return nil, &logic.MalformedRecordError{Index: i, Field: "*", Reason: err.Error()}
		}
		if err := requireFields(i, elem); err != nil {
			return nil, err
		}
		var rec models.RawRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, &logic.MalformedRecordError{Index: i, Field: "*", Reason: err.Error()}
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return records, nil
}

// jsonRequired are the keys a JSON record must carry with a value. A missing
// outcome or cube delta would otherwise decode as a SKIP worth zero cubes.
var jsonRequired = []string{ColOutcome, ColCubes}

func requireFields(i int, elem json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return &logic.MalformedRecordError{Index: i, Field: "*", Reason: err.Error()}
	}
	for _, col := range jsonRequired {
		v := strings.TrimSpace(string(fields[col]))
		if v == "" || v == "null" || strings.Trim(v, "\" \t") == "" {
			return &logic.MalformedRecordError{Index: i, Field: col, Reason: "missing value"}
		}
	}
	return nil
}

// trackingReader remembers a failed read so transport errors are not
// reported as malformed records.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
