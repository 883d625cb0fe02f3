package gpc

import (
	"math"
	"math/rand/v2"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Helper functions.
//////

// toFloat64s converts a slice of any numeric type to a slice of float64
// values for the linear-algebra layer.
//
// Important notes:
// - Creates a new slice; doesn't modify the input
// - Preserves order of elements
// - Returns an empty slice for nil or empty input.
func toFloat64s[T constraints.Integer | constraints.Float](vs []T) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}

	return out
}

// linspace builds an evenly spaced, strictly increasing grid of n points
// spanning [lo, hi] inclusive.
//
// Edge cases:
// - n == 0 returns an empty grid
// - n == 1 returns just lo.
func linspace(lo, hi float64, n int) []float64 {
	switch n {
	case 0:
		return []float64{}
	case 1:
		return []float64{lo}
	}

	return floats.Span(make([]float64, n), lo, hi)
}

// halfNormalLogProb evaluates the log density of a half-normal distribution
// with the given scale at x. Support is x >= 0; anything below has zero
// density.
func halfNormalLogProb(x, scale float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}

	// Twice the density of a zero-mean normal, folded onto the positive axis.
	return math.Ln2 + distuv.Normal{Mu: 0, Sigma: scale}.LogProb(x)
}

// randSource derives a deterministic random stream from a seed.
func randSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0)
}

// copyFloats returns an independent copy of vs.
func copyFloats(vs []float64) []float64 {
	out := make([]float64, len(vs))
	copy(out, vs)

	return out
}

// allFinite reports whether every element of vs is a finite number.
func allFinite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
