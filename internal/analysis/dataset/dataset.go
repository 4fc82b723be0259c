// Package dataset holds the plain rows the analytics pass works on. Rows
// come from a CSV output directory or from the sqlite store; both are read
// through Record so column defaults live in one place.
package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// Kinds lists the packet kinds the analytics pass reads.
var Kinds = []packet.Kind{
	packet.KindSession,
	packet.KindParticipants,
	packet.KindLapData,
	packet.KindCarStatus,
}

// Session is one session packet row.
type Session struct {
	Timestamp       float64
	TrackID         int
	TotalLaps       int
	TrackLength     int
	SessionType     int
	Formula         int
	PitSpeedLimit   int
	SafetyCarStatus int
}

// Participant is one participants packet row.
type Participant struct {
	Timestamp    float64
	CarIndex     int
	DriverID     int
	TeamID       int
	RaceNumber   int
	AIControlled int
	Name         string
}

// Lap is one lap data row.
type Lap struct {
	Timestamp     float64
	CarIndex      int
	LapNum        int
	LastLapTimeMS int
	Invalid       bool
	PitStatus     packet.PitStatus
	ResultStatus  packet.ResultStatus
	CarPosition   int
	LapDistance   float64
}

// LapTime returns the last lap time in seconds.
func (l Lap) LapTime() float64 { return float64(l.LastLapTimeMS) / 1000 }

// Valid reports whether the row carries a completed, valid lap time.
func (l Lap) Valid() bool { return l.LastLapTimeMS > 0 && !l.Invalid }

// Status is one car status row, reduced to tyre state.
type Status struct {
	Timestamp      float64
	CarIndex       int
	ActualCompound packet.ActualCompound
	VisualCompound packet.VisualCompound
	TyreAge        int
}

// Dataset is everything loaded for one analysed session.
type Dataset struct {
	Sessions     []Session
	Participants []Participant
	Laps         []Lap
	Statuses     []Status
}

// Empty reports whether no rows of any kind were loaded.
func (d *Dataset) Empty() bool {
	return len(d.Sessions) == 0 && len(d.Participants) == 0 && len(d.Laps) == 0 && len(d.Statuses) == 0
}

// Add appends one row of the given kind. Kinds outside Kinds are ignored.
func (d *Dataset) Add(kind packet.Kind, r Record) {
	switch kind {
	case packet.KindSession:
		d.Sessions = append(d.Sessions, Session{
			Timestamp:       r.Float("timestamp", 0),
			TrackID:         r.Int("track_id", -1),
			TotalLaps:       r.Int("total_laps", 0),
			TrackLength:     r.Int("track_length", 0),
			SessionType:     r.Int("session_type", 0),
			Formula:         r.Int("formula", 0),
			PitSpeedLimit:   r.Int("pit_speed_limit", 0),
			SafetyCarStatus: r.Int("safety_car_status", 0),
		})
	case packet.KindParticipants:
		d.Participants = append(d.Participants, Participant{
			Timestamp:    r.Float("timestamp", 0),
			CarIndex:     r.Int("car_index", 0),
			DriverID:     r.Int("driver_id", 255),
			TeamID:       r.Int("team_id", 255),
			RaceNumber:   r.Int("race_number", 0),
			AIControlled: r.Int("ai_controlled", 1),
			Name:         r.String("name", ""),
		})
	case packet.KindLapData:
		d.Laps = append(d.Laps, Lap{
			Timestamp:     r.Float("timestamp", 0),
			CarIndex:      r.Int("car_index", 0),
			LapNum:        r.Int("current_lap_num", 0),
			LastLapTimeMS: r.Int("last_lap_time_ms", 0),
			Invalid:       r.Int("current_lap_invalid", 0) != 0,
			PitStatus:     packet.PitStatus(r.Int("pit_status", 0)),
			ResultStatus:  packet.ResultStatus(r.Int("result_status", 0)),
			CarPosition:   r.Int("car_position", 0),
			LapDistance:   r.Float("lap_distance", 0),
		})
	case packet.KindCarStatus:
		d.Statuses = append(d.Statuses, Status{
			Timestamp:      r.Float("timestamp", 0),
			CarIndex:       r.Int("car_index", 0),
			ActualCompound: packet.ActualCompound(r.Int("actual_tyre_compound", 0)),
			VisualCompound: packet.VisualCompound(r.Int("visual_tyre_compound", 0)),
			TyreAge:        r.Int("tyres_age_laps", 0),
		})
	}
}

// Record is one row addressed by column name. Values are text as stored in
// CSV files or scanned from sqlite.
type Record struct {
	index  map[string]int
	values []string
}

// NewRecord pairs a header with one row of values.
func NewRecord(index map[string]int, values []string) Record {
	return Record{index: index, values: values}
}

// Index maps column names to positions.
func Index(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[strings.TrimSpace(c)] = i
	}
	return idx
}

func (r Record) raw(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.values) {
		return "", false
	}
	v := strings.TrimSpace(r.values[i])
	return v, v != ""
}

// String returns the column's text or def when absent or empty.
func (r Record) String(col, def string) string {
	if v, ok := r.raw(col); ok {
		return v
	}
	return def
}

// Float returns the column as float64 or def when absent or unparsable.
func (r Record) Float(col string, def float64) float64 {
	v, ok := r.raw(col)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return def
	}
	return f
}

// Int returns the column truncated to int, or def. Float text such as
// "3.0" is accepted.
func (r Record) Int(col string, def int) int {
	v, ok := r.raw(col)
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}

// sortByTime orders rows by timestamp, keeping load order for ties.
func sortByTime[T any](rows []T, ts func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool { return ts(rows[i]) < ts(rows[j]) })
}

// Sort orders every row kind by timestamp.
func (d *Dataset) Sort() {
	sortByTime(d.Sessions, func(s Session) float64 { return s.Timestamp })
	sortByTime(d.Participants, func(p Participant) float64 { return p.Timestamp })
	sortByTime(d.Laps, func(l Lap) float64 { return l.Timestamp })
	sortByTime(d.Statuses, func(s Status) float64 { return s.Timestamp })
}
