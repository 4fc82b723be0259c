// Package race runs the offline analysis of one session: lap times, pit
// stops, caution phases, tyre degradation and strategies. Its output is a
// set of ordered parameter groups for a race simulator.
package race

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/analysis/degradation"
	"github.com/banshee-data/pitwall/internal/analysis/stint"
	"github.com/banshee-data/pitwall/internal/analysis/strategy"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// DefaultTotalLaps is used when no session row gives a race distance.
const DefaultTotalLaps = 50

// Options tunes one analysis run.
type Options struct {
	Scheme          lookup.CompoundScheme
	JoinTolerance   float64 // seconds
	MinStintSamples int
	PitLoss         float64
	Season          int
	EmitRetirements bool
	CarSeed         uint64
	// Workers bounds per-driver concurrency; 0 uses GOMAXPROCS.
	Workers int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Scheme:          lookup.SchemeVisual,
		JoinTolerance:   1.0,
		MinStintSamples: stint.MinSamples,
		PitLoss:         strategy.DefaultPitLoss,
		Season:          2025,
		CarSeed:         1,
	}
}

// Driver is one participant.
type Driver struct {
	CarIndex   int
	Name       string
	Initials   string
	Team       string
	TeamID     int
	DriverID   int
	RaceNumber int
	AI         bool
}

// SessionInfo describes the analysed session.
type SessionInfo struct {
	Found         bool
	TrackID       int
	TrackName     string
	TotalLaps     int
	TrackLength   int
	SessionType   int
	Formula       int
	PitSpeedLimit int
}

// CarResult is everything derived for one car.
type CarResult struct {
	CarIndex int
	LapTimes []float64
	Stints   []stint.Stint
	// Points pools the usable samples of analysable stints per compound.
	Points map[string][]degradation.Point
	// Models holds the compounds whose fit succeeded.
	Models   map[string]degradation.Model
	Real     strategy.Plan
	PitStops []PitStop
	Optimal  strategy.Result
}

// Report is the analysis of one session.
type Report struct {
	Options     Options
	Session     SessionInfo
	Drivers     []Driver
	Cars        map[int]*CarResult
	FCY         []FCYPhase
	Retirements []Retirement
	// Available lists every compound key the simulator may use.
	Available []string
	progress  *progressMap
}

// CarIndices returns the analysed cars in index order.
func (r *Report) CarIndices() []int {
	idx := lo.Keys(r.Cars)
	sort.Ints(idx)
	return idx
}

// Initials returns the simulator key for a car.
func (r *Report) Initials(car int) string {
	for _, d := range r.Drivers {
		if d.CarIndex == car {
			return d.Initials
		}
	}
	return fmt.Sprintf("DR%d", car)
}

// TotalLaps is the race distance used for strategies.
func (r *Report) TotalLaps() int {
	if r.Session.Found && r.Session.TotalLaps > 0 {
		return r.Session.TotalLaps
	}
	return DefaultTotalLaps
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Analyze runs the whole pass. Per-car fitting and per-driver optimisation
// run concurrently; the output does not depend on scheduling.
func Analyze(ctx context.Context, d *dataset.Dataset, opts Options) (*Report, error) {
	if opts.Scheme == "" {
		opts.Scheme = lookup.SchemeVisual
	}
	r := &Report{
		Options: opts,
		Session: sessionInfo(d),
		Drivers: participants(d),
		Cars:    make(map[int]*CarResult),
	}
	monitoring.Logf("analysing %d drivers on %s (%d laps)", len(r.Drivers), r.Session.TrackName, r.TotalLaps())

	car := func(idx int) *CarResult {
		c, ok := r.Cars[idx]
		if !ok {
			c = &CarResult{CarIndex: idx}
			r.Cars[idx] = c
		}
		return c
	}

	// Lap times need no tyre state, so they come from every lap row.
	for _, l := range dataset.PerLap(lapsAsJoined(d.Laps)) {
		if l.Valid() {
			c := car(l.CarIndex)
			c.LapTimes = append(c.LapTimes, l.LapTime())
		}
	}
	for idx, stops := range pitStops(d.Laps) {
		car(idx).PitStops = stops
	}
	joined := d.Join(opts.Scheme, opts.JoinTolerance)
	for idx, rows := range lo.GroupBy(joined, func(l dataset.JoinedLap) int { return l.CarIndex }) {
		car(idx).Real = realStrategy(rows)
	}
	perLap := dataset.PerLap(joined)

	byCar := lo.GroupBy(perLap, func(l dataset.JoinedLap) int { return l.CarIndex })
	cars := r.CarIndices()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, idx := range cars {
		c := r.Cars[idx]
		rows := byCar[idx]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fitCar(c, rows, opts.MinStintSamples)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Available = availableCompounds(r)
	dry := lo.Filter(r.Available, func(c string, _ int) bool { return lookup.IsDry(c) })

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, idx := range cars {
		c := r.Cars[idx]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.Optimal = strategy.Optimize(strategy.Input{
				TotalLaps: r.TotalLaps(),
				Compounds: dry,
				Models:    c.Models,
				PitLoss:   opts.PitLoss,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.progress = newProgressMap(d.Laps, r.Session.TrackLength)
	r.FCY = fcyPhases(d.Sessions)
	r.Retirements = retirements(d.Laps)

	for _, idx := range cars {
		c := r.Cars[idx]
		for comp, m := range c.Models {
			monitoring.Debugf("%s %s: k_1_lin=%.4f R²=%.3f n=%d", r.Initials(idx), comp, m.K1Lin, m.RSquared, m.Samples)
		}
		if c.Optimal.Plan != nil {
			monitoring.Debugf("%s optimal: %s (%d stops)", r.Initials(idx), c.Optimal.Plan, c.Optimal.Plan.Stops())
		}
	}
	return r, nil
}

func lapsAsJoined(laps []dataset.Lap) []dataset.JoinedLap {
	out := lo.Map(laps, func(l dataset.Lap, _ int) dataset.JoinedLap { return dataset.JoinedLap{Lap: l} })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CarIndex != out[j].CarIndex {
			return out[i].CarIndex < out[j].CarIndex
		}
		return out[i].LapNum < out[j].LapNum
	})
	return out
}

// fitCar segments one car's per-lap rows into stints and fits every
// compound with enough usable samples.
func fitCar(c *CarResult, rows []dataset.JoinedLap, minSamples int) {
	samples := lo.Map(rows, func(l dataset.JoinedLap, _ int) stint.Sample {
		return stint.Sample{
			Lap:      l.LapNum,
			Compound: l.Compound,
			TyreAge:  l.TyreAge,
			LapTime:  l.LapTime(),
			Invalid:  l.Invalid,
		}
	})
	c.Stints = stint.Segment(c.CarIndex, samples)
	c.Points = make(map[string][]degradation.Point)
	for _, s := range stint.Analyzable(c.Stints, minSamples) {
		for _, smp := range s.Usable() {
			c.Points[s.Compound] = append(c.Points[s.Compound], degradation.Point{
				Age:     float64(smp.TyreAge),
				LapTime: smp.LapTime,
			})
		}
	}
	c.Models = make(map[string]degradation.Model)
	for comp, pts := range c.Points {
		m, err := degradation.Fit(pts)
		if err != nil {
			monitoring.Debugf("car %d %s: %v", c.CarIndex, comp, err)
			continue
		}
		c.Models[comp] = m
	}
}

// realStrategy lists the tyre changes seen in one car's joined rows.
func realStrategy(rows []dataset.JoinedLap) strategy.Plan {
	var plan strategy.Plan
	for i, l := range rows {
		if i > 0 && l.Compound == rows[i-1].Compound && l.TyreAge >= rows[i-1].TyreAge {
			continue
		}
		plan = append(plan, strategy.Entry{
			StartLap: max(l.LapNum-1, 0),
			Compound: l.Compound,
			TyreAge:  l.TyreAge,
		})
	}
	return plan
}

// availableCompounds is every compound with pooled samples, or the
// default dry set, followed by the wet compounds.
func availableCompounds(r *Report) []string {
	var seen []string
	for _, c := range r.Cars {
		seen = append(seen, lo.Keys(c.Points)...)
	}
	avail := lo.Uniq(seen)
	sort.Strings(avail)
	if len(avail) == 0 {
		avail = []string{"A3", "A4", "A6"}
	}
	return lo.Uniq(append(avail, "I", "W"))
}
