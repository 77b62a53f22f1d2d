package logic

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when an analysis has no games to divide by.
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrMalformedRecord is the sentinel wrapped by every MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
)

// MalformedRecordError reports a record whose field could not be parsed into
// the expected shape. It fails the whole load.
type MalformedRecordError struct {
	Index  int // zero-based position in the log
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: field %q (%q): %s", e.Index, e.Field, e.Value, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
