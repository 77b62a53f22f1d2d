// Package loader materializes a match log into raw records. Loaders do no
// analysis; they only turn a source into []models.RawRecord in log order.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/snapstats/analyzer/internal/models"
)

// Column names used by the match log, in every source format.
const (
	ColLocations        = "locations"
	ColCards            = "cards"
	ColMyDeck           = "my deck"
	ColOutcome          = "outcome"
	ColCubes            = "cubes"
	ColBotBehavior      = "bot behavior?"
	ColDeckArchetype    = "deck archetype"
	ColArchetypeCertain = "archetype certain"
)

// RequiredColumns must be present in every tabular source.
var RequiredColumns = []string{ColLocations, ColCards, ColMyDeck, ColOutcome, ColCubes}

// Loader supplies a fully materialized match log.
type Loader interface {
	Load(ctx context.Context) ([]models.RawRecord, error)
}

// Open picks a loader for source: a file path ending in .csv or .json, or a
// database DSN of the form driver://... (postgres, pgx, mysql, clickhouse,
// sqlite).
func Open(source string, opts Options) (Loader, error) {
	if rest, ok := strings.CutPrefix(source, "pgx://"); ok {
		return NewPgxLoaderURL("postgres://"+rest, opts), nil
	}
	if driver, dsn, ok := splitDSN(source); ok {
		return NewSQLLoader(driver, dsn, opts), nil
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		return NewCSVLoader(source), nil
	case ".json":
		return NewJSONLoader(source), nil
	}
	return nil, fmt.Errorf("don't know how to load %q", source)
}

// OpenDriver picks a loader for an explicit driver name and DSN, as given by
// DATABASE_DRIVER and DATABASE_URL.
func OpenDriver(driver, dsn string, opts Options) (Loader, error) {
	switch driver {
	case "pgx":
		return NewPgxLoaderURL(dsn, opts), nil
	case "postgres", "mysql", "clickhouse", "sqlite":
		return NewSQLLoader(driver, dsn, opts), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Options configures database-backed loaders.
type Options struct {
	Table   string // defaults to "matches"
	OrderBy string // chronological key, defaults to "id"
}

func (o Options) withDefaults() Options {
	if o.Table == "" {
		o.Table = "matches"
	}
	if o.OrderBy == "" {
		o.OrderBy = "id"
	}
	return o
}

func splitDSN(source string) (driver, dsn string, ok bool) {
	scheme, rest, found := strings.Cut(source, "://")
	if !found {
		return "", "", false
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		// lib/pq and pgx both want the URL form intact.
		return "postgres", source, true
	case "mysql":
		return "mysql", rest, true
	case "clickhouse":
		return "clickhouse", source, true
	case "sqlite", "file":
		return "sqlite", rest, true
	}
	return "", "", false
}
