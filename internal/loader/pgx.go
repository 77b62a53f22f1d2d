package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapstats/analyzer/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgxLoader reads the match log from PostgreSQL over a pgx pool.
type PgxLoader struct {
	pool PgPool
	url  string
	opts Options
}

func NewPgxLoader(pool PgPool, opts Options) *PgxLoader {
	return &PgxLoader{pool: pool, opts: opts.withDefaults()}
}

// NewPgxLoaderURL connects on each Load and closes the pool afterwards.
func NewPgxLoaderURL(url string, opts Options) *PgxLoader {
	return &PgxLoader{url: url, opts: opts.withDefaults()}
}

// OpenPgx connects a pool for url; callers close it when done.
func OpenPgx(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (l *PgxLoader) Load(ctx context.Context) ([]models.RawRecord, error) {
	pool := l.pool
	if pool == nil {
		p, err := OpenPgx(ctx, l.url)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		pool = p
	}

	rows, err := pool.Query(ctx, pgxQuery(l.opts))
	if err != nil {
		return nil, fmt.Errorf("query match log: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for row := 0; rows.Next(); row++ {
		vals := make([]string, len(logColumns))
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
					return vals[i]
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

// pgxQuery casts every column to text so one scan shape fits any schema.
func pgxQuery(opts Options) string {
	cols := make([]string, len(logColumns))
	for i, c := range logColumns {
		cols[i] = fmt.Sprintf("COALESCE(CAST(%s AS TEXT), '')", pgx.Identifier{c}.Sanitize())
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "),
		pgx.Identifier{opts.Table}.Sanitize(),
		pgx.Identifier{opts.OrderBy}.Sanitize())
}
