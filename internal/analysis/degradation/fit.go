// Package degradation fits lap time against tyre age.
//
// A model is reported relative to the fastest lap in the filtered data:
//
//	linear:    lap_time = baseline + K0 + K1Lin*age
//	quadratic: lap_time = baseline + K0Quad + K1Quad*age + K2Quad*age²
//
// All coefficients are non-negative magnitudes since tyre wear only ever
// adds time.
package degradation

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when fewer than MinSamples points remain.
var ErrInsufficientData = errors.New("insufficient data for degradation fit")

// MinSamples is the smallest point count a fit accepts.
const MinSamples = 3

// k2Seed seeds the quadratic term and is its fallback value.
const k2Seed = 0.0001

// quadSettings bounds the quadratic solve.
var quadSettings = func() *optimize.Settings {
	return &optimize.Settings{
		GradientThreshold: 1e-8,
		MajorIterations:   10000,
	}
}

// Point is one (tyre age, lap time in seconds) observation.
type Point struct {
	Age     float64
	LapTime float64
}

// Model is a fitted degradation curve.
type Model struct {
	Baseline float64 `json:"baseline"`
	K0       float64 `json:"k_0"`
	K1Lin    float64 `json:"k_1_lin"`
	K0Quad   float64 `json:"k_0_quad"`
	K1Quad   float64 `json:"k_1_quad"`
	K2Quad   float64 `json:"k_2_quad"`
	RSquared float64 `json:"r_squared"`
	Samples  int     `json:"n_samples"`
	// Fallback is set when the quadratic solve did not converge and the
	// quadratic terms are the linear seed.
	Fallback bool `json:"fallback"`
}

// Delta returns the linear model's added time at age.
func (m Model) Delta(age float64) float64 {
	return m.K0 + m.K1Lin*age
}

// QuadDelta returns the quadratic model's added time at age.
func (m Model) QuadDelta(age float64) float64 {
	return m.K0Quad + m.K1Quad*age + m.K2Quad*age*age
}

// percentile matches numpy's default linear interpolation: the value at
// rank (n-1)*p of the sorted data.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// RejectOutliers drops points whose lap time lies outside
// [Q1-1.5*IQR, Q3+1.5*IQR]. Order is preserved.
func RejectOutliers(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	times := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.LapTime
	}
	sort.Float64s(times)
	q1, q3 := percentile(times, 0.25), percentile(times, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if p.LapTime >= lo && p.LapTime <= hi {
			kept = append(kept, p)
		}
	}
	return kept
}

// Fit filters outliers and fits the linear and quadratic models. It is
// deterministic: identical input yields an identical Model.
func Fit(points []Point) (Model, error) {
	if len(points) < MinSamples {
		return Model{}, ErrInsufficientData
	}
	kept := RejectOutliers(points)
	if len(kept) < MinSamples {
		return Model{}, ErrInsufficientData
	}

	ages := make([]float64, len(kept))
	times := make([]float64, len(kept))
	for i, p := range kept {
		ages[i] = p.Age
		times[i] = p.LapTime
	}
	baseline := floats.Min(times)

	intercept, slope := stat.LinearRegression(ages, times, nil, false)
	r2 := stat.RSquared(ages, times, nil, intercept, slope)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) {
		// Every point at one age: the slope is undefined.
		return Model{}, ErrInsufficientData
	}
	if math.IsNaN(r2) {
		// Constant lap times fit perfectly.
		r2 = 1
	}
	k0 := intercept - baseline

	m := Model{
		Baseline: baseline,
		K0:       math.Max(0, k0),
		K1Lin:    math.Abs(slope),
		RSquared: r2,
		Samples:  len(kept),
	}

	quad, ok := fitQuadratic(ages, times, baseline, []float64{k0, slope, k2Seed})
	if !ok {
		quad = []float64{k0, slope, k2Seed}
		m.Fallback = true
	}
	m.K0Quad = math.Abs(quad[0])
	m.K1Quad = math.Abs(quad[1])
	m.K2Quad = math.Abs(quad[2])
	return m, nil
}

// fitQuadratic minimises the squared residuals of
// baseline + k0 + k1*age + k2*age² with BFGS.
func fitQuadratic(ages, times []float64, baseline float64, seed []float64) ([]float64, bool) {
	residual := func(x []float64, i int) float64 {
		a := ages[i]
		return baseline + x[0] + x[1]*a + x[2]*a*a - times[i]
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			var sse float64
			for i := range ages {
				r := residual(x, i)
				sse += r * r
			}
			return sse
		},
		Grad: func(grad, x []float64) {
			grad[0], grad[1], grad[2] = 0, 0, 0
			for i, a := range ages {
				r := 2 * residual(x, i)
				grad[0] += r
				grad[1] += r * a
				grad[2] += r * a * a
			}
		},
	}
	res, err := optimize.Minimize(problem, append([]float64(nil), seed...), quadSettings(), &optimize.BFGS{})
	if err != nil || res == nil || res.Status.Early() {
		return nil, false
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return res.X, true
}
