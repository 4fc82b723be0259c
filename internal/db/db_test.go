package db

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestPragmasApplied verifies that essential PRAGMAs are set on pooled connections.
func TestPragmasApplied(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"},
		{"temp_store", "2"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("Failed to query %s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %s, want %s", tt.pragma, got, tt.want)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(MigrationsFS(), ".")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_telemetry_tables.up.sql")
	assert.Contains(t, names, "000001_create_telemetry_tables.down.sql")
}

func tableColumns(t *testing.T, db *DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	return cols
}

// TestSchemaMatchesRowColumns verifies every decoded kind has a table whose
// columns are the run id followed by the emitted row columns.
func TestSchemaMatchesRowColumns(t *testing.T) {
	db := setupTestDB(t)
	checked := 0
	for _, kind := range packet.Kinds() {
		cols := packet.Columns(kind)
		if cols == nil {
			continue
		}
		want := append([]string{"run_id"}, cols...)
		assert.Equal(t, want, tableColumns(t, db, kind.String()), kind.String())
		checked++
	}
	assert.Equal(t, 11, checked)
}

func TestMigrateDownAndUp(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateDown())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.Empty(t, tableColumns(t, db, "lap_data"))

	require.NoError(t, db.MigrateUp())
	require.NoError(t, db.MigrateUp(), "second up is a no-op")
	assert.NotEmpty(t, tableColumns(t, db, "lap_data"))
}

func TestOpenDBLeavesSchemaAlone(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "bare.db"))
	require.NoError(t, err)
	defer db.Close()

	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.Empty(t, tableColumns(t, db, "runs"))
}

var epoch = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

func lapSample(car uint8, lap uint8, at time.Duration) packet.CarSample {
	return packet.CarSample{
		Kind:        packet.KindLapData,
		Received:    epoch.Add(at),
		SessionUID:  1<<63 + 5,
		SessionTime: float32(at.Seconds()),
		FrameID:     uint32(at / time.Second),
		CarIndex:    car,
		Body: &packet.LapData{
			LastLapTimeMS:     90500,
			LapDistance:       1250.5,
			CarPosition:       car + 1,
			CurrentLapNum:     lap,
			PitStatus:         packet.PitPitting,
			CurrentLapInvalid: 1,
			ResultStatus:      packet.ResultActive,
		},
	}
}

func TestSinkAndLoadDataset(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sink, err := db.NewSink(ctx, "udp:20777", 2025, epoch)
	require.NoError(t, err)

	require.NoError(t, sink.Append(packet.KindLapData, lapSample(3, 7, 2*time.Second).Row()))
	require.NoError(t, sink.Append(packet.KindLapData, lapSample(1, 6, time.Second).Row()))
	require.NoError(t, sink.Flush())
	require.NoError(t, sink.Flush(), "flush with nothing pending")

	status := packet.CarSample{
		Kind:     packet.KindCarStatus,
		Received: epoch.Add(time.Second),
		CarIndex: 1,
		Body: &packet.CarStatus{
			ActualTyreCompound: 18,
			VisualTyreCompound: 16,
			TyresAgeLaps:       4,
		},
	}
	require.NoError(t, sink.Append(packet.KindCarStatus, status.Row()))
	require.NoError(t, sink.Close())

	var uid string
	require.NoError(t, db.QueryRow(`SELECT session_uid FROM lap_data LIMIT 1`).Scan(&uid))
	assert.Equal(t, "9223372036854775813", uid)

	d, runID, err := db.LoadDataset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, sink.RunID(), runID)

	require.Len(t, d.Laps, 2)
	first := d.Laps[0]
	assert.Equal(t, 1, first.CarIndex)
	assert.Equal(t, 6, first.LapNum)
	assert.Equal(t, 90500, first.LastLapTimeMS)
	assert.True(t, first.Invalid)
	assert.Equal(t, packet.PitPitting, first.PitStatus)
	assert.Equal(t, packet.ResultActive, first.ResultStatus)
	assert.Equal(t, 2, first.CarPosition)
	assert.InDelta(t, 1250.5, first.LapDistance, 1e-6)
	assert.InDelta(t, float64(epoch.Unix()+1), first.Timestamp, 1e-3)

	require.Len(t, d.Statuses, 1)
	assert.Equal(t, packet.VisualCompound(16), d.Statuses[0].VisualCompound)
	assert.Equal(t, 4, d.Statuses[0].TyreAge)
	assert.Empty(t, d.Sessions)
}

func TestLoadDatasetPicksLatestRun(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	older, err := db.NewSink(ctx, "old.pcap", 2025, epoch)
	require.NoError(t, err)
	require.NoError(t, older.Append(packet.KindLapData, lapSample(0, 1, 0).Row()))
	require.NoError(t, older.Close())

	newer, err := db.NewSink(ctx, "new.pcap", 2025, epoch.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, newer.Append(packet.KindLapData, lapSample(0, 2, 0).Row()))
	require.NoError(t, newer.Append(packet.KindLapData, lapSample(1, 2, 0).Row()))
	require.NoError(t, newer.Close())

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new.pcap", runs[0].Source)
	assert.Equal(t, 2025, runs[0].Format)
	assert.True(t, runs[0].StartedAt.Equal(epoch.Add(time.Hour)))

	d, runID, err := db.LoadDataset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, newer.RunID(), runID)
	assert.Len(t, d.Laps, 2)

	d, _, err = db.LoadDataset(ctx, older.RunID())
	require.NoError(t, err)
	require.Len(t, d.Laps, 1)
	assert.Equal(t, 1, d.Laps[0].LapNum)
}

func TestLoadDatasetErrors(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, _, err := db.LoadDataset(ctx, "")
	assert.ErrorIs(t, err, ErrNoRuns)

	sink, err := db.NewSink(ctx, "empty", 2025, epoch)
	require.NoError(t, err)
	_, _, err = db.LoadDataset(ctx, sink.RunID())
	assert.ErrorIs(t, err, dataset.ErrNoData)
}

func TestSinkRejectsUndecodedKind(t *testing.T) {
	db := setupTestDB(t)
	sink, err := db.NewSink(context.Background(), "test", 2025, epoch)
	require.NoError(t, err)
	assert.Error(t, sink.Append(packet.KindLobbyInfo, []any{1.0}))
	require.NoError(t, sink.Close())
}

func TestAdminRoutes(t *testing.T) {
	db := setupTestDB(t)
	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux, func() any { return map[string]int{"packets": 3} }))

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	backup, err := http.Get(srv.URL + "/debug/backup")
	require.NoError(t, err)
	defer backup.Body.Close()
	testutil.AssertStatusCode(t, backup.StatusCode, http.StatusOK)
	assert.Equal(t, "application/gzip", backup.Header.Get("Content-Type"))

	gz, err := gzip.NewReader(backup.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("SQLite format 3\x00")), "backup is a sqlite file")
}
