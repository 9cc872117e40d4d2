package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"carpa/internal/adapters/http/perf"
)

// PgTracer times statements sent through a pgx pool the same way TimedDB
// times SQLite, so both backends share the slow-query log and perf panel.
type PgTracer struct {
	queryObserver
}

var _ pgx.QueryTracer = (*PgTracer)(nil)

// NewPgTracer creates a tracer. collector may be nil.
func NewPgTracer(collector *perf.Collector, slow time.Duration) *PgTracer {
	return &PgTracer{queryObserver: newQueryObserver(collector, slow)}
}

type pgTraceKey struct{}

type pgTrace struct {
	sql   string
	start time.Time
}

// TraceQueryStart stamps the statement and its start time on the query context.
func (t *PgTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, pgTraceKey{}, pgTrace{sql: data.SQL, start: time.Now()})
}

// TraceQueryEnd records the statement. Failed statements are timed too.
func (t *PgTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	if tr, ok := ctx.Value(pgTraceKey{}).(pgTrace); ok {
		t.observe(tr.sql, tr.start)
	}
}
