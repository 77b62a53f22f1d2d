package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/snapstats/analyzer/internal/models"
)

// logColumns is the select list, in scan order.
var logColumns = []string{
	ColLocations, ColCards, ColMyDeck, ColOutcome,
	ColCubes, ColBotBehavior, ColDeckArchetype, ColArchetypeCertain,
}

// SQLLoader reads the match log from a table through database/sql.
// Supported drivers: postgres (lib/pq), mysql, clickhouse and sqlite.
type SQLLoader struct {
	driver string
	dsn    string
	db     *sql.DB
	opts   Options
}

func NewSQLLoader(driver, dsn string, opts Options) *SQLLoader {
	return &SQLLoader{driver: driver, dsn: dsn, opts: opts.withDefaults()}
}

// NewSQLLoaderDB reads from an already open database.
func NewSQLLoaderDB(db *sql.DB, driver string, opts Options) *SQLLoader {
	return &SQLLoader{driver: driver, db: db, opts: opts.withDefaults()}
}

func (l *SQLLoader) Load(ctx context.Context) ([]models.RawRecord, error) {
	db := l.db
	if db == nil {
		var err error
		db, err = sql.Open(l.driver, l.dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", l.driver, err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping %s: %w", l.driver, err)
		}
	}

	query := selectQuery(l.driver, l.opts)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query match log: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for row := 0; rows.Next(); row++ {
		vals := make([]sql.NullString, len(logColumns))
		dest := make([]any, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", row, err)
		}

		rec, err := parseRow(row, func(col string) string {
			for i, c := range logColumns {
				if c == col {
					return vals[i].String
				}
			}
			return ""
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read match log: %w", err)
	}
	return records, nil
}

// selectQuery quotes identifiers for the driver's dialect; several log
// columns contain spaces.
func selectQuery(driver string, opts Options) string {
	quote := func(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
	if driver == "mysql" {
		quote = func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
	}

	cols := make([]string, len(logColumns))
	for i, c := range logColumns {
		cols[i] = quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), quote(opts.Table), quote(opts.OrderBy))
}
