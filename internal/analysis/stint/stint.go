// Package stint partitions a car's lap samples into tyre stints.
package stint

// MinSamples is the usable sample count a stint needs to be fitted.
const MinSamples = 3

// Sample is one lap observation with the tyre state it was driven on.
type Sample struct {
	Lap      int
	Compound string
	TyreAge  int
	LapTime  float64 // seconds; 0 when no lap has completed
	Invalid  bool
}

// Usable reports whether the sample has a valid, completed lap time.
func (s Sample) Usable() bool {
	return s.LapTime > 0 && !s.Invalid
}

// Stint is a contiguous run of samples on one set of tyres.
type Stint struct {
	CarIndex int
	Compound string
	Samples  []Sample
}

// Usable returns the samples that may be fitted.
func (s Stint) Usable() []Sample {
	out := make([]Sample, 0, len(s.Samples))
	for _, smp := range s.Samples {
		if smp.Usable() {
			out = append(out, smp)
		}
	}
	return out
}

// Segment splits samples, already ordered by lap, into stints. A new stint
// starts when the compound changes or the tyre age drops. Separate runs on
// the same compound stay separate stints.
func Segment(carIndex int, samples []Sample) []Stint {
	var stints []Stint
	for i, s := range samples {
		if i == 0 || s.Compound != samples[i-1].Compound || s.TyreAge < samples[i-1].TyreAge {
			stints = append(stints, Stint{CarIndex: carIndex, Compound: s.Compound})
		}
		cur := &stints[len(stints)-1]
		cur.Samples = append(cur.Samples, s)
	}
	return stints
}

// Analyzable keeps stints with at least minSamples usable samples;
// minSamples below MinSamples is raised to it.
func Analyzable(stints []Stint, minSamples int) []Stint {
	if minSamples < MinSamples {
		minSamples = MinSamples
	}
	var out []Stint
	for _, s := range stints {
		if len(s.Usable()) >= minSamples {
			out = append(out, s)
		}
	}
	return out
}
