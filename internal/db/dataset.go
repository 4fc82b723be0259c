package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// ErrNoRuns is returned when the store has no recorded run to load.
var ErrNoRuns = errors.New("no runs recorded")

// LoadDataset reads the rows of one run for analysis. An empty runID
// selects the most recent run. The chosen run id is returned.
func (db *DB) LoadDataset(ctx context.Context, runID string) (*dataset.Dataset, string, error) {
	if runID == "" {
		runs, err := db.Runs(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, "", ErrNoRuns
		}
		runID = runs[0].ID
	}

	d := &dataset.Dataset{}
	for _, kind := range dataset.Kinds {
		n, err := db.loadKind(ctx, d, kind, runID)
		if err != nil {
			return nil, runID, fmt.Errorf("load %s: %w", kind, err)
		}
		monitoring.Logf("loaded %d %s rows from run %s", n, kind, runID)
	}
	if d.Empty() {
		return nil, runID, dataset.ErrNoData
	}
	d.Sort()
	return d, runID, nil
}

func (db *DB) loadKind(ctx context.Context, d *dataset.Dataset, kind packet.Kind, runID string) (int, error) {
	cols := packet.Columns(kind)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
	}
	q := fmt.Sprintf(`SELECT %s FROM %q WHERE run_id = ? ORDER BY timestamp`, strings.Join(quoted, ", "), kind.String())
	rows, err := db.QueryContext(ctx, q, runID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	index := dataset.Index(cols)
	dest := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, err
		}
		values := make([]string, len(cols))
		for i, v := range dest {
			values[i] = v.String
		}
		d.Add(kind, dataset.NewRecord(index, values))
		n++
	}
	return n, rows.Err()
}
