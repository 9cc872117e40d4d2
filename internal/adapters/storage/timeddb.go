package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"carpa/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all SQLite stores.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is used when NewTimedDB is given a non-positive threshold.
const DefaultSlowQuery = 100 * time.Millisecond

// queryObserver warns about slow statements and feeds the perf collector.
type queryObserver struct {
	collector *perf.Collector
	slow      time.Duration
}

func newQueryObserver(collector *perf.Collector, slow time.Duration) queryObserver {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return queryObserver{collector: collector, slow: slow}
}

// TimedDB wraps a *sql.DB, warns about slow queries and feeds the perf collector.
type TimedDB struct {
	queryObserver
	db *sql.DB
}

// NewTimedDB wraps db. collector may be nil.
// PRE: db is a valid database connection
// POST: every call through the wrapper is timed
func NewTimedDB(db *sql.DB, collector *perf.Collector, slow time.Duration) *TimedDB {
	return &TimedDB{queryObserver: newQueryObserver(collector, slow), db: db}
}

// RawDB returns the wrapped connection for migrations.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

func (o queryObserver) observe(query string, start time.Time) {
	elapsed := time.Since(start)
	label := QueryLabel(query)
	ms := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= o.slow {
		slog.Warn("slow_query", "query", label, "duration_ms", ms)
	}
	if o.collector != nil {
		o.collector.Record(perf.Entry{Kind: perf.KindQuery, Label: label, DurationMs: ms, At: start})
	}
}

// ExecContext times sql.DB.ExecContext.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start)
	return res, err
}

// QueryContext times sql.DB.QueryContext.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start)
	return rows, err
}

// QueryRowContext times sql.DB.QueryRowContext.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start)
	return row
}

// BeginTx times sql.DB.BeginTx. Statements inside the transaction are not timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start)
	return tx, err
}

// Close closes the wrapped connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// QueryLabel names a statement by its verb and main table, e.g. "SELECT booking".
func QueryLabel(query string) string {
	fields := strings.Fields(strings.ToUpper(query))
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := fields[0]
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		return verb + " " + strings.ToLower(at(fields, 1))
	default:
		return verb
	}
	for i, f := range fields {
		if f == marker {
			return verb + " " + strings.ToLower(strings.Trim(at(fields, i+1), "(),;"))
		}
	}
	return verb
}

func at(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
