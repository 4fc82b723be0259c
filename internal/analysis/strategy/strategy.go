// Package strategy searches pit strategies against fitted degradation
// models.
package strategy

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/banshee-data/pitwall/internal/analysis/degradation"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// DefaultPitLoss is the combined in-lap, service and out-lap loss in seconds.
const DefaultPitLoss = 23.0

// Coefficients used for a compound the driver has no model for.
const (
	DefaultK0    = 0.2
	DefaultK1Lin = 0.08
)

// Entry starts a stint. Reserved is carried for the simulator and is
// always zero here.
type Entry struct {
	StartLap int
	Compound string
	TyreAge  int
	Reserved float64
}

// MarshalJSON renders the entry as the simulator's 4-tuple.
func (e Entry) MarshalJSON() ([]byte, error) {
	compound, err := json.Marshal(e.Compound)
	if err != nil {
		return nil, err
	}
	reserved := strconv.FormatFloat(e.Reserved, 'f', -1, 64)
	if e.Reserved == float64(int64(e.Reserved)) {
		reserved = strconv.FormatFloat(e.Reserved, 'f', 1, 64)
	}
	return fmt.Appendf(nil, "[%d,%s,%d,%s]", e.StartLap, compound, e.TyreAge, reserved), nil
}

// Plan is an ordered list of stints; the first starts at lap 0.
type Plan []Entry

// Stops is the number of pit stops the plan implies.
func (p Plan) Stops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

func (p Plan) String() string {
	s := ""
	for i, e := range p {
		if i > 0 {
			s += fmt.Sprintf(" -L%d-> ", e.StartLap)
		}
		s += e.Compound
	}
	return s
}

func fresh(lap int, compound string) Entry {
	return Entry{StartLap: lap, Compound: compound}
}

// DefaultPlan is used when a driver has no compound data. Its two entries
// are the starting stint on A4 and a single stop onto A3 at half distance.
func DefaultPlan(totalLaps int) Plan {
	return Plan{fresh(0, "A4"), fresh(int(float64(totalLaps)*0.5), "A3")}
}

// Score is the plan's degradation time summed over every lap of every stint
// plus the pit loss of each stop. Base pace is excluded, so scores compare
// only across plans for one driver.
func Score(plan Plan, totalLaps int, models map[string]degradation.Model, pitLoss float64) float64 {
	var total float64
	for _, d := range LapDeltas(plan, totalLaps, models) {
		total += d
	}
	return total + float64(plan.Stops())*pitLoss
}

// LapDeltas returns the degradation time added on each lap of the plan,
// indexed from lap 0. Compounds without a model use the default curve.
func LapDeltas(plan Plan, totalLaps int, models map[string]degradation.Model) []float64 {
	deltas := make([]float64, 0, totalLaps)
	for i, e := range plan {
		end := totalLaps
		if i+1 < len(plan) {
			end = plan[i+1].StartLap
		}
		k0, k1 := DefaultK0, DefaultK1Lin
		if m, ok := models[e.Compound]; ok {
			k0, k1 = m.K0, m.K1Lin
		}
		for age := 0; age < end-e.StartLap; age++ {
			deltas = append(deltas, k0+k1*float64(age))
		}
	}
	return deltas
}

// Input is one driver's optimisation problem.
type Input struct {
	TotalLaps int
	// Compounds available to the race; non-dry keys are ignored.
	Compounds []string
	Models    map[string]degradation.Model
	PitLoss   float64
}

// Result is the winning plan. Default is set when no search ran.
type Result struct {
	Plan    Plan
	Score   float64
	Default bool
}

func lapAt(totalLaps int, frac float64) int {
	return int(float64(totalLaps) * frac)
}

// Optimize returns the lowest scoring plan over one, two and three stops.
// Candidates are visited in a fixed order and the first of equal scores
// wins, so results are reproducible.
func Optimize(in Input) Result {
	var dry []string
	for _, c := range in.Compounds {
		if lookup.IsDry(c) {
			dry = append(dry, c)
		}
	}
	var withData []string
	for _, c := range dry {
		if _, ok := in.Models[c]; ok {
			withData = append(withData, c)
		}
	}
	if len(withData) == 0 {
		return Result{Plan: DefaultPlan(in.TotalLaps), Default: true}
	}

	laps := in.TotalLaps
	var best Plan
	bestScore := 0.0
	try := func(p Plan) {
		s := Score(p, laps, in.Models, in.PitLoss)
		if best == nil || s < bestScore {
			best, bestScore = p, s
		}
	}

	for _, first := range dry {
		for _, second := range dry {
			for pit := lapAt(laps, 0.30); pit < lapAt(laps, 0.70); pit += 2 {
				try(Plan{fresh(0, first), fresh(pit, second)})
			}
		}
	}

	for _, first := range dry {
		for _, mid := range dry {
			for _, last := range dry {
				for pit1 := lapAt(laps, 0.25); pit1 < lapAt(laps, 0.45); pit1 += 3 {
					for pit2 := lapAt(laps, 0.55); pit2 < lapAt(laps, 0.75); pit2 += 3 {
						if pit2 > pit1+5 {
							try(Plan{fresh(0, first), fresh(pit1, mid), fresh(pit2, last)})
						}
					}
				}
			}
		}
	}

	if len(withData) >= 3 {
		byWear := append([]string(nil), withData...)
		sort.SliceStable(byWear, func(i, j int) bool {
			return in.Models[byWear[i]].K1Lin < in.Models[byWear[j]].K1Lin
		})
		hard, medium, soft := byWear[0], byWear[len(byWear)/2], byWear[len(byWear)-1]
		try(Plan{
			fresh(0, medium),
			fresh(lapAt(laps, 0.20), hard),
			fresh(lapAt(laps, 0.45), soft),
			fresh(lapAt(laps, 0.70), soft),
		})
	}

	if best == nil {
		return Result{Plan: DefaultPlan(laps), Default: true}
	}
	return Result{Plan: best, Score: bestScore}
}
