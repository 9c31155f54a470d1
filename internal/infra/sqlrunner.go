package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface used by repositories. Queries carry a
// "--sql <uuid>" marker line that tags them in the logs.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// ErrMissingMarker is returned for queries without a valid marker line.
var ErrMissingMarker = errors.New("sql marker missing or invalid")

var markerRegexp = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)

// SQLRunner strips the marker, runs the statement on the backend and logs the
// marker with the elapsed time.
type SQLRunner struct {
	db     SQLExecutor
	logger zerolog.Logger
}

// NewSQLRunner wraps a pgx pool.
func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return newSQLRunner(pool, logger)
}

func newSQLRunner(db SQLExecutor, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{db: db, logger: logger.With().Str("component", "sql").Logger()}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.db.Exec(ctx, stmt, args...)
	r.done(marker, "exec", start, err).Int64("rows", tag.RowsAffected()).Send()
	return tag, err
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	return &markedRow{
		row:    r.db.QueryRow(ctx, stmt, args...),
		runner: r,
		marker: marker,
		start:  time.Now(),
	}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, stmt, err := splitMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		r.done(marker, "query", start, err).Send()
		return nil, err
	}
	return &markedRows{Rows: rows, runner: r, marker: marker, start: start}, nil
}

// done picks the event level: errors are logged, no-rows is not an error.
func (r *SQLRunner) done(marker, op string, start time.Time, err error) *zerolog.Event {
	var ev *zerolog.Event
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		ev = r.logger.Error().Err(err)
	} else {
		ev = r.logger.Debug()
	}
	return ev.Str("marker", marker).Str("op", op).Dur("elapsed", time.Since(start))
}

type markedRow struct {
	row    pgx.Row
	runner *SQLRunner
	marker string
	start  time.Time
}

func (m *markedRow) Scan(dest ...any) error {
	err := m.row.Scan(dest...)
	m.runner.done(m.marker, "query_row", m.start, err).Send()
	return err
}

type markedRows struct {
	pgx.Rows
	runner *SQLRunner
	marker string
	start  time.Time
	n      int
	closed bool
}

func (m *markedRows) Next() bool {
	if m.Rows.Next() {
		m.n++
		return true
	}
	return false
}

func (m *markedRows) Close() {
	m.Rows.Close()
	if m.closed {
		return
	}
	m.closed = true
	m.runner.done(m.marker, "query", m.start, m.Rows.Err()).Int("rows", m.n).Send()
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

// splitMarker returns the marker id and the statement that follows it.
func splitMarker(query string) (string, string, error) {
	head, stmt, _ := strings.Cut(strings.TrimSpace(query), "\n")
	m := markerRegexp.FindStringSubmatch(strings.TrimSpace(head))
	if m == nil {
		return "", "", ErrMissingMarker
	}
	if strings.TrimSpace(stmt) == "" {
		return "", "", errors.New("empty query")
	}
	return m[1], stmt, nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
