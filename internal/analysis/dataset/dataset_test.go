package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/telemetry/sink"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestRecordDefaults(t *testing.T) {
	r := NewRecord(Index([]string{"a", " b ", "c", "d"}), []string{"3.0", "7", "", "x"})
	if got := r.Int("a", -1); got != 3 {
		t.Errorf("Int(a) = %d, want 3", got)
	}
	if got := r.Int("b", -1); got != 7 {
		t.Errorf("Int(b) = %d, want 7", got)
	}
	if got := r.Int("c", -1); got != -1 {
		t.Errorf("Int(empty) = %d, want default", got)
	}
	if got := r.Int("d", -1); got != -1 {
		t.Errorf("Int(unparsable) = %d, want default", got)
	}
	if got := r.Float("missing", 2.5); got != 2.5 {
		t.Errorf("Float(missing) = %v, want default", got)
	}
	if got := r.String("d", "z"); got != "x" {
		t.Errorf("String(d) = %q", got)
	}
}

func TestSessionDefaults(t *testing.T) {
	var d Dataset
	d.Add(packet.KindSession, NewRecord(Index([]string{"timestamp"}), []string{"10"}))
	require.Len(t, d.Sessions, 1)
	assert.Equal(t, -1, d.Sessions[0].TrackID)

	d.Add(packet.KindParticipants, NewRecord(Index([]string{"car_index"}), []string{"4"}))
	assert.Equal(t, 255, d.Participants[0].DriverID)
	assert.Equal(t, 255, d.Participants[0].TeamID)

	d.Add(packet.KindMotion, NewRecord(nil, nil))
	assert.False(t, d.Empty())
}

func TestCSVFileFor(t *testing.T) {
	names := []string{
		"car_setups_20250101_120000.csv",
		"car_status_20250101_120000.csv",
		"car_status_20250102_090000.csv",
		"session_history_20250101_120000.csv",
		"session_20250101_120000.csv",
		"lap_data_20250101_120000.txt",
	}
	assert.Equal(t, "car_status_20250102_090000.csv", csvFileFor(packet.KindCarStatus, names))
	assert.Equal(t, "session_20250101_120000.csv", csvFileFor(packet.KindSession, names))
	assert.Equal(t, "", csvFileFor(packet.KindLapData, names))
}

// writeSinkRows writes rows through the CSV sink so the loader reads files
// exactly as collection produces them.
func writeSinkRows(t *testing.T, dir string, samples ...packet.CarSample) {
	t.Helper()
	c, err := sink.NewCSV(dir, time.Date(2025, 3, 23, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for _, s := range samples {
		require.NoError(t, c.Append(s.Kind, s.Row()))
	}
	require.NoError(t, c.Close())
}

func sample(kind packet.Kind, at float64, car uint8, body packet.Body) packet.CarSample {
	sec := int64(at)
	return packet.CarSample{
		Kind:       kind,
		Received:   time.Unix(sec, int64((at-float64(sec))*1e9)),
		SessionUID: 7,
		CarIndex:   car,
		Body:       body,
	}
}

func TestLoadCSVDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeSinkRows(t, dir,
		sample(packet.KindSession, 100, 0, &packet.Session{TrackID: 2, TotalLaps: 56, TrackLength: 5451}),
		sample(packet.KindParticipants, 100, 1, &packet.Participant{DriverID: 9, TeamID: 1, RaceNumber: 16, Name: "LECLERC"}),
		sample(packet.KindLapData, 101, 1, &packet.LapData{LastLapTimeMS: 95123, CurrentLapNum: 3, PitStatus: packet.PitPitting}),
		sample(packet.KindCarStatus, 101.2, 1, &packet.CarStatus{VisualTyreCompound: 16, ActualTyreCompound: 18, TyresAgeLaps: 2}),
	)

	d, err := LoadCSVDir(dir)
	require.NoError(t, err)
	require.Len(t, d.Sessions, 1)
	assert.Equal(t, 2, d.Sessions[0].TrackID)
	assert.Equal(t, 56, d.Sessions[0].TotalLaps)
	require.Len(t, d.Participants, 1)
	assert.Equal(t, "LECLERC", d.Participants[0].Name)
	assert.Equal(t, 16, d.Participants[0].RaceNumber)
	require.Len(t, d.Laps, 1)
	assert.Equal(t, 95123, d.Laps[0].LastLapTimeMS)
	assert.Equal(t, packet.PitPitting, d.Laps[0].PitStatus)
	assert.InDelta(t, 95.123, d.Laps[0].LapTime(), 1e-9)
	require.Len(t, d.Statuses, 1)
	assert.Equal(t, 2, d.Statuses[0].TyreAge)

	joined := d.Join(lookup.SchemeVisual, 1.0)
	require.Len(t, joined, 1)
	assert.Equal(t, "A3", joined[0].Compound)
	assert.Equal(t, "A3", d.Join(lookup.SchemeActual, 1.0)[0].Compound)
	assert.Empty(t, d.Join(lookup.SchemeVisual, 0.1))
}

func TestLoadCSVDirEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	_, err := LoadCSVDir(dir)
	assert.True(t, errors.Is(err, ErrNoData), "got %v", err)

	_, err = LoadCSVDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestJoinNearestWithinTolerance(t *testing.T) {
	d := &Dataset{
		Laps: []Lap{
			{Timestamp: 10.0, CarIndex: 0, LapNum: 2},
			{Timestamp: 5.0, CarIndex: 0, LapNum: 1},
			{Timestamp: 20.0, CarIndex: 1, LapNum: 1},
			{Timestamp: 30.0, CarIndex: 2, LapNum: 1},
		},
		Statuses: []Status{
			{Timestamp: 9.5, CarIndex: 0, VisualCompound: 17, TyreAge: 1},
			{Timestamp: 10.5, CarIndex: 0, VisualCompound: 18, TyreAge: 9},
			{Timestamp: 4.8, CarIndex: 0, VisualCompound: 16, TyreAge: 0},
			{Timestamp: 21.5, CarIndex: 1, VisualCompound: 16, TyreAge: 0},
		},
	}
	got := d.Join(lookup.SchemeVisual, 1.0)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].LapNum)
	assert.Equal(t, "A3", got[0].Compound)
	// 9.5 and 10.5 are equidistant from 10.0; the earlier row wins.
	assert.Equal(t, 2, got[1].LapNum)
	assert.Equal(t, "A4", got[1].Compound)
	assert.Equal(t, 1, got[1].TyreAge)
}

func TestPerLap(t *testing.T) {
	rows := []JoinedLap{
		{Lap: Lap{CarIndex: 0, LapNum: 1, Timestamp: 1}},
		{Lap: Lap{CarIndex: 0, LapNum: 1, Timestamp: 2}},
		{Lap: Lap{CarIndex: 0, LapNum: 2, Timestamp: 3}},
		{Lap: Lap{CarIndex: 1, LapNum: 2, Timestamp: 3}},
	}
	got := PerLap(rows)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0].Timestamp)
}
