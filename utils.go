package hosel

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"
)

//////
// Helper functions.
//////

// clamp limits v to [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// nearestChoice returns the choice closest to v. Ties go to the earlier
// choice.
func nearestChoice(v float64, choices []float64) float64 {
	best := choices[0]
	bestDist := math.Abs(v - best)

	for _, c := range choices[1:] {
		if d := math.Abs(v - c); d < bestDist {
			best, bestDist = c, d
		}
	}

	return best
}

// choiceIndex returns the index of the choice closest to v.
func choiceIndex(v float64, choices []float64) int {
	idx := 0
	bestDist := math.Abs(v - choices[0])

	for i, c := range choices[1:] {
		if d := math.Abs(v - c); d < bestDist {
			idx, bestDist = i+1, d
		}
	}

	return idx
}

// MatchValueType snaps v onto the value set of d: continuous values are
// clamped, integer values are rounded and clamped, discrete values move to
// the nearest choice.
func MatchValueType(v float64, d Dimension) float64 {
	switch d.Type {
	case Integer:
		return clamp(math.Round(v), math.Ceil(d.Min), math.Floor(d.Max))
	case Discrete:
		return nearestChoice(v, d.Choices)
	default:
		return clamp(v, d.Min, d.Max)
	}
}

// MatchValueTypes snaps every value of c onto its dimension. It returns a new
// configuration; c is not modified.
//
// Panics if c has fewer values than dims.
func MatchValueTypes(c Configuration, dims []Dimension) Configuration {
	out := make(Configuration, len(dims))
	for i, d := range dims {
		out[i] = MatchValueType(c[i], d)
	}

	return out
}

// randIntInclusive returns a uniform integer in [lo, hi].
func randIntInclusive(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int63n(hi-lo+1)
}

// Values converts a configuration into a typed parameter slice, for callers
// that work with integer or float parameters directly.
//
// Usage example:
//
//	params := Values[int64](selection.Configuration)
//	bufferSize, workers := params[0], params[1]
func Values[T constraints.Integer | constraints.Float](c Configuration) []T {
	out := make([]T, len(c))
	for i, v := range c {
		out[i] = T(v)
	}

	return out
}

// FromValues builds a configuration from typed parameters.
func FromValues[T constraints.Integer | constraints.Float](params ...T) Configuration {
	out := make(Configuration, len(params))
	for i, v := range params {
		out[i] = float64(v)
	}

	return out
}
