package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// Run is one collection or replay recorded in the store.
type Run struct {
	ID        string
	StartedAt time.Time
	Source    string
	Format    int
}

// Sink writes routed rows into the store. Rows accumulate in one
// transaction that is committed on Flush and Close.
type Sink struct {
	db    *DB
	runID string

	mu    sync.Mutex
	tx    *sql.Tx
	stmts map[packet.Kind]*sql.Stmt
}

// NewSink records a new run and returns a sink tagging every row with it.
func (db *DB) NewSink(ctx context.Context, source string, format int, started time.Time) (*Sink, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, source, format) VALUES (?, ?, ?, ?)`,
		id, unixSeconds(started), source, format)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return &Sink{db: db, runID: id, stmts: make(map[packet.Kind]*sql.Stmt)}, nil
}

// RunID identifies the rows written by this sink.
func (s *Sink) RunID() string { return s.runID }

func insertSQL(kind packet.Kind) (string, error) {
	cols := packet.Columns(kind)
	if cols == nil {
		return "", fmt.Errorf("no table for %s packets", kind)
	}
	quoted := make([]string, 0, len(cols)+1)
	quoted = append(quoted, `"run_id"`)
	for _, c := range cols {
		quoted = append(quoted, `"`+c+`"`)
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (?%s)",
		kind.String(), strings.Join(quoted, ", "), strings.Repeat(", ?", len(cols))), nil
}

// Append stores one row of kind, opening a transaction if none is pending.
func (s *Sink) Append(kind packet.Kind, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		s.tx = tx
	}
	stmt, ok := s.stmts[kind]
	if !ok {
		q, err := insertSQL(kind)
		if err != nil {
			return err
		}
		if stmt, err = s.tx.Prepare(q); err != nil {
			return fmt.Errorf("prepare %s insert: %w", kind, err)
		}
		s.stmts[kind] = stmt
	}
	args := make([]any, 0, len(row)+1)
	args = append(args, s.runID)
	for _, v := range row {
		args = append(args, sqlValue(v))
	}
	if _, err := stmt.Exec(args...); err != nil {
		return fmt.Errorf("insert %s row: %w", kind, err)
	}
	return nil
}

// sqlValue converts row values the driver cannot take as is. uint64 may
// exceed int64 and is stored as text.
func sqlValue(v any) any {
	switch x := v.(type) {
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		if x {
			return 1
		}
		return 0
	case float32:
		return float64(x)
	}
	return v
}

// Flush commits the pending transaction.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	for k, stmt := range s.stmts {
		stmt.Close()
		delete(s.stmts, k)
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close commits pending rows. The database itself stays open.
func (s *Sink) Close() error {
	return s.Flush()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT run_id, started_at, source, COALESCE(format, 0) FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started float64
		)
		if err := rows.Scan(&r.ID, &started, &r.Source, &r.Format); err != nil {
			return nil, err
		}
		sec := int64(started)
		r.StartedAt = time.Unix(sec, int64((started-float64(sec))*1e9))
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
