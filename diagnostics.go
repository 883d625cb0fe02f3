package gpc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

//////
// Convergence diagnostics.
//////

// PotentialScaleReduction computes the split potential-scale-reduction
// statistic (split R-hat) for each coordinate of a named output.
//
// Each chain is split in half and the halves treated as separate sequences;
// R-hat compares the between-sequence variance of their means with the
// pooled within-sequence variance. Values near 1 are consistent with the
// sequences having mixed into a common distribution; values noticeably above
// 1 (conventionally > 1.01 or > 1.1 depending on appetite) indicate
// non-convergence.
//
// Important notes:
// - This is a diagnostic for the caller to inspect; the sampler itself never
//   gates on it
// - Needs at least 4 kept iterations per chain to split meaningfully.
func PotentialScaleReduction(s *SampleSet, name string) ([]float64, error) {
	if s == nil {
		return nil, &ConfigurationError{Field: "s", Reason: "must not be nil"}
	}

	if s.Iterations() < 4 {
		return nil, &ConfigurationError{
			Field:  "s",
			Reason: fmt.Sprintf("need at least 4 iterations per chain to split, got %d", s.Iterations()),
		}
	}

	dim, err := s.Dim(name)
	if err != nil {
		return nil, err
	}

	half := s.Iterations() / 2

	rhat := make([]float64, dim)

	for j := 0; j < dim; j++ {
		var seqMeans, seqVars []float64

		for c := 0; c < s.Chains(); c++ {
			draws, err := s.ChainDraws(c, name)
			if err != nil {
				return nil, err
			}

			col := make([]float64, s.Iterations())
			for it := range col {
				col[it] = draws.At(it, j)
			}

			for _, seq := range [][]float64{col[:half], col[half : 2*half]} {
				seqMeans = append(seqMeans, stat.Mean(seq, nil))
				seqVars = append(seqVars, stat.Variance(seq, nil))
			}
		}

		w := stat.Mean(seqVars, nil)
		b := stat.Variance(seqMeans, nil)

		if w <= 0 {
			// Constant sequences; nothing to diagnose.
			rhat[j] = 1
			continue
		}

		l := float64(half)
		varPlus := (l-1)/l*w + b

		rhat[j] = math.Sqrt(varPlus / w)
	}

	return rhat, nil
}

// EffectiveSampleSize estimates, per coordinate of a named output, how many
// independent draws the correlated MCMC draws are worth.
//
// Uses the chain-averaged autocorrelation sequence truncated by Geyer's
// initial positive-sequence rule: lags are accumulated in pairs until a pair
// sum turns non-positive.
//
// Important notes:
// - The estimate is capped at the total number of kept draws
// - Like R-hat, this is for external inspection only.
func EffectiveSampleSize(s *SampleSet, name string) ([]float64, error) {
	if s == nil {
		return nil, &ConfigurationError{Field: "s", Reason: "must not be nil"}
	}

	if s.Iterations() < 4 {
		return nil, &ConfigurationError{
			Field:  "s",
			Reason: fmt.Sprintf("need at least 4 iterations per chain, got %d", s.Iterations()),
		}
	}

	dim, err := s.Dim(name)
	if err != nil {
		return nil, err
	}

	m := s.Chains()
	n := s.Iterations()
	total := float64(m * n)

	ess := make([]float64, dim)

	for j := 0; j < dim; j++ {
		chains := make([][]float64, m)
		means := make([]float64, m)
		vars := make([]float64, m)

		for c := 0; c < m; c++ {
			draws, err := s.ChainDraws(c, name)
			if err != nil {
				return nil, err
			}

			col := make([]float64, n)
			for it := range col {
				col[it] = draws.At(it, j)
			}

			chains[c] = col
			means[c] = stat.Mean(col, nil)
			vars[c] = stat.Variance(col, nil)
		}

		w := stat.Mean(vars, nil)

		var b float64
		if m > 1 {
			b = stat.Variance(means, nil)
		}

		varPlus := float64(n-1)/float64(n)*w + b

		if varPlus <= 0 {
			// Constant draws carry no sampling information.
			ess[j] = total
			continue
		}

		// Chain-averaged autocovariance at lag t.
		acov := func(t int) float64 {
			var sum float64

			for c := 0; c < m; c++ {
				col := chains[c]

				var s float64
				for i := 0; i+t < n; i++ {
					s += (col[i] - means[c]) * (col[i+t] - means[c])
				}

				sum += s / float64(n)
			}

			return sum / float64(m)
		}

		var sumRho float64

		for t := 1; t+1 < n; t += 2 {
			rhoA := 1 - (w-acov(t))/varPlus
			rhoB := 1 - (w-acov(t+1))/varPlus

			if rhoA+rhoB <= 0 {
				break
			}

			sumRho += rhoA + rhoB
		}

		tau := 1 + 2*sumRho

		ess[j] = math.Min(total, total/tau)
	}

	return ess, nil
}
