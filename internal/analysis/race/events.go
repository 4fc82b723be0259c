package race

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// PitStop is one detected stop with its lap time losses in seconds.
type PitStop struct {
	Lap        int
	InLapLoss  float64
	OutLapLoss float64
}

// FCYPhase is a safety car or virtual safety car period in wall time.
type FCYPhase struct {
	Start float64
	End   float64
	Type  string // "SC" or "VSC"
}

// Retirement is a car's first transition into a retired state.
type Retirement struct {
	CarIndex  int
	Lap       int
	Timestamp float64
}

// byLap groups lap rows per car ordered by lap number, keeping time order
// within a lap.
func byLap(laps []dataset.Lap) map[int][]dataset.Lap {
	cars := lo.GroupBy(laps, func(l dataset.Lap) int { return l.CarIndex })
	for _, rows := range cars {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].LapNum < rows[j].LapNum })
	}
	return cars
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// pitStops finds pit lane entries (status leaving none) and pairs each with
// the next exit on the same or a later lap. Losses are measured against the
// car's median green lap and clamped at zero.
func pitStops(laps []dataset.Lap) map[int][]PitStop {
	out := make(map[int][]PitStop)
	for idx, rows := range byLap(laps) {
		var normal []float64
		for _, l := range rows {
			if l.Valid() && l.PitStatus == packet.PitNone {
				normal = append(normal, l.LapTime())
			}
		}
		if len(normal) == 0 {
			continue
		}
		avg := median(normal)
		lapOr := func(l dataset.Lap) float64 {
			if l.LastLapTimeMS > 0 {
				return l.LapTime()
			}
			return avg
		}

		for i := 1; i < len(rows); i++ {
			entry := rows[i]
			if entry.PitStatus == packet.PitNone || rows[i-1].PitStatus != packet.PitNone {
				continue
			}
			for j := i + 1; j < len(rows); j++ {
				exit := rows[j]
				if exit.PitStatus != packet.PitNone || rows[j-1].PitStatus == packet.PitNone || exit.LapNum < entry.LapNum {
					continue
				}
				out[idx] = append(out[idx], PitStop{
					Lap:        entry.LapNum,
					InLapLoss:  math.Max(0, lapOr(entry)-avg),
					OutLapLoss: math.Max(0, lapOr(exit)-avg),
				})
				break
			}
		}
	}
	return out
}

// fcyPhases walks safety car status changes in time order. A phase starts
// on SC or VSC and ends when the status returns to none; a phase still open
// at the end of the data is dropped.
func fcyPhases(sessions []dataset.Session) []FCYPhase {
	var (
		phases []FCYPhase
		open   *FCYPhase
	)
	for i, s := range sessions {
		if i > 0 && s.SafetyCarStatus == sessions[i-1].SafetyCarStatus {
			continue
		}
		switch packet.SafetyCarStatus(s.SafetyCarStatus) {
		case packet.SafetyCarFull, packet.SafetyCarVirtual:
			if open == nil {
				typ := "SC"
				if packet.SafetyCarStatus(s.SafetyCarStatus) == packet.SafetyCarVirtual {
					typ = "VSC"
				}
				open = &FCYPhase{Start: s.Timestamp, Type: typ}
			}
		case packet.SafetyCarNone:
			if open != nil {
				open.End = s.Timestamp
				phases = append(phases, *open)
				open = nil
			}
		}
	}
	return phases
}

// retirements reports the first row per car whose result status turns to
// dnf or retired.
func retirements(laps []dataset.Lap) []Retirement {
	var out []Retirement
	for idx, rows := range byLap(laps) {
		for i, l := range rows {
			if !l.ResultStatus.Retired() || (i > 0 && rows[i-1].ResultStatus.Retired()) {
				continue
			}
			out = append(out, Retirement{CarIndex: idx, Lap: l.LapNum, Timestamp: l.Timestamp})
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CarIndex < out[j].CarIndex })
	return out
}

// progressMap converts wall time into race progress in laps using the race
// leader's lap data.
type progressMap struct {
	times    []float64
	progress []float64
}

func newProgressMap(laps []dataset.Lap, trackLength int) *progressMap {
	leader := lo.Filter(laps, func(l dataset.Lap, _ int) bool { return l.CarPosition == 1 })
	sort.SliceStable(leader, func(i, j int) bool { return leader[i].Timestamp < leader[j].Timestamp })

	length := float64(trackLength)
	if length <= 0 {
		for _, l := range leader {
			length = math.Max(length, l.LapDistance)
		}
	}
	pm := &progressMap{}
	for _, l := range leader {
		frac := 0.0
		if length > 0 {
			frac = math.Min(math.Max(l.LapDistance/length, 0), 1)
		}
		pm.times = append(pm.times, l.Timestamp)
		pm.progress = append(pm.progress, float64(max(l.LapNum-1, 0))+frac)
	}
	return pm
}

// At returns progress at wall time t from the latest leader row at or
// before t, or 0 when none precedes it.
func (pm *progressMap) At(t float64) float64 {
	i := sort.Search(len(pm.times), func(i int) bool { return pm.times[i] > t })
	if i == 0 {
		return 0
	}
	return pm.progress[i-1]
}
