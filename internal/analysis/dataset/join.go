package dataset

import (
	"math"
	"sort"

	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// JoinedLap is a lap row with the tyre state of the nearest status row of
// the same car.
type JoinedLap struct {
	Lap
	Compound string
	TyreAge  int
}

// roundMS rounds a timestamp in seconds to whole milliseconds.
func roundMS(ts float64) float64 {
	return math.Round(ts*1000) / 1000
}

// Join pairs every lap row with the status row of the same car whose
// millisecond-rounded timestamp is nearest, within tolerance seconds. On
// equal distance the earlier status row wins. Lap rows without a match are
// dropped. Output is ordered by car, then lap number, then timestamp.
func (d *Dataset) Join(scheme lookup.CompoundScheme, tolerance float64) []JoinedLap {
	byCar := make(map[int][]Status)
	for _, s := range d.Statuses {
		byCar[s.CarIndex] = append(byCar[s.CarIndex], s)
	}
	for _, ss := range byCar {
		sort.SliceStable(ss, func(i, j int) bool { return roundMS(ss[i].Timestamp) < roundMS(ss[j].Timestamp) })
	}

	out := make([]JoinedLap, 0, len(d.Laps))
	for _, l := range d.Laps {
		ss := byCar[l.CarIndex]
		if len(ss) == 0 {
			continue
		}
		t := roundMS(l.Timestamp)
		i := sort.Search(len(ss), func(i int) bool { return roundMS(ss[i].Timestamp) >= t })

		best, bestDist := -1, math.Inf(1)
		if i > 0 {
			best, bestDist = i-1, t-roundMS(ss[i-1].Timestamp)
		}
		if i < len(ss) {
			if dist := roundMS(ss[i].Timestamp) - t; dist < bestDist {
				best, bestDist = i, dist
			}
		}
		if best < 0 || bestDist > tolerance {
			continue
		}
		s := ss[best]
		id := int(s.VisualCompound)
		if scheme == lookup.SchemeActual {
			id = int(s.ActualCompound)
		}
		out = append(out, JoinedLap{Lap: l, Compound: lookup.Compound(scheme, id), TyreAge: s.TyreAge})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CarIndex != b.CarIndex {
			return a.CarIndex < b.CarIndex
		}
		if a.LapNum != b.LapNum {
			return a.LapNum < b.LapNum
		}
		return a.Timestamp < b.Timestamp
	})
	return out
}

// PerLap keeps the first joined row of each (car, lap). Rows are expected
// in Join order.
func PerLap(rows []JoinedLap) []JoinedLap {
	out := make([]JoinedLap, 0, len(rows))
	for i, r := range rows {
		if i > 0 && rows[i-1].CarIndex == r.CarIndex && rows[i-1].LapNum == r.LapNum {
			continue
		}
		out = append(out, r)
	}
	return out
}
