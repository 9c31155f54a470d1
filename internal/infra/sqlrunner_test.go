package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const markedQuery = `--sql 953679f7-6900-431f-8686-115111faee35
select id from clothes`

type recordingDB struct {
	stmts []string
	rows  int
	err   error
}

func (d *recordingDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	d.stmts = append(d.stmts, query)
	return pgconn.NewCommandTag("INSERT 0 1"), d.err
}

func (d *recordingDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	d.stmts = append(d.stmts, query)
	return errorRow{err: pgx.ErrNoRows}
}

func (d *recordingDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	d.stmts = append(d.stmts, query)
	if d.err != nil {
		return nil, d.err
	}
	return &countingRows{left: d.rows}, nil
}

type countingRows struct {
	pgx.Rows
	left   int
	closed int
}

func (r *countingRows) Next() bool {
	if r.left == 0 {
		return false
	}
	r.left--
	return true
}

func (r *countingRows) Close()     { r.closed++ }
func (r *countingRows) Err() error { return nil }

func TestSQLRunnerStripsMarker(t *testing.T) {
	db := &recordingDB{}
	var buf bytes.Buffer
	runner := newSQLRunner(db, zerolog.New(&buf).Level(zerolog.DebugLevel))

	if _, err := runner.Exec(context.Background(), markedQuery); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if len(db.stmts) != 1 || strings.Contains(db.stmts[0], "--sql") {
		t.Fatalf("marker not stripped: %#v", db.stmts)
	}
	if !strings.Contains(buf.String(), `"marker":"953679f7-6900-431f-8686-115111faee35"`) {
		t.Fatalf("marker not logged: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"rows":1`) {
		t.Fatalf("affected rows not logged: %s", buf.String())
	}
}

func TestSQLRunnerRejectsUnmarkedQueries(t *testing.T) {
	db := &recordingDB{}
	runner := newSQLRunner(db, zerolog.Nop())

	for _, q := range []string{"select 1", "--sql not-a-uuid\nselect 1", "--sql 953679f7-6900-431f-8686-115111faee35"} {
		if _, err := runner.Query(context.Background(), q); err == nil {
			t.Fatalf("expected error for %q", q)
		}
	}
	if err := runner.QueryRow(context.Background(), "select 1").Scan(); !errors.Is(err, ErrMissingMarker) {
		t.Fatalf("QueryRow error = %v", err)
	}
	if len(db.stmts) != 0 {
		t.Fatalf("unmarked queries reached the database: %#v", db.stmts)
	}
}

func TestSQLRunnerLogsRowCountOnce(t *testing.T) {
	db := &recordingDB{rows: 3}
	var buf bytes.Buffer
	runner := newSQLRunner(db, zerolog.New(&buf).Level(zerolog.DebugLevel))

	rows, err := runner.Query(context.Background(), markedQuery)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	for rows.Next() {
	}
	rows.Close()
	rows.Close()

	if got := strings.Count(buf.String(), `"rows":3`); got != 1 {
		t.Fatalf("expected one row-count entry, got %d: %s", got, buf.String())
	}
}

func TestSQLRunnerNoRowsIsNotAnError(t *testing.T) {
	var buf bytes.Buffer
	runner := newSQLRunner(&recordingDB{}, zerolog.New(&buf).Level(zerolog.DebugLevel))

	var id int64
	if err := runner.QueryRow(context.Background(), markedQuery).Scan(&id); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("Scan error = %v", err)
	}
	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("no-rows logged as error: %s", buf.String())
	}
}
