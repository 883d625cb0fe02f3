package gpc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

//////
// Summaries.
//////

// Summary holds pointwise reductions of one named output of a sample set:
// the mean and a two-sided credible interval at each coordinate.
type Summary struct {
	// Name is the output the summary was computed over.
	Name string

	// Prob is the interval probability, e.g. 0.9 for a 90% interval.
	Prob float64

	// Mean holds the pointwise means, one per coordinate.
	Mean []float64

	// Lower and Upper bound the pointwise two-sided interval.
	Lower []float64
	Upper []float64
}

// Summarize reduces a named output of a sample set to pointwise means and a
// two-sided quantile interval.
//
// Parameters:
// - s: Any sample set (posterior or predictive)
// - name: The output to reduce, e.g. "f_star"
// - prob: Interval probability in (0, 1), e.g. 0.9 or 0.95
//
// Returns:
// - *Summary: Mean, Lower and Upper per coordinate, across all chains.
func Summarize(s *SampleSet, name string, prob float64) (*Summary, error) {
	return summarize(s, name, prob, nil)
}

// SummarizeProbability reduces a latent-scale output through the logistic
// link before summarizing, yielding class-probability means and intervals.
// Every value in the result is bounded in (0, 1).
func SummarizeProbability(s *SampleSet, name string, prob float64) (*Summary, error) {
	return summarize(s, name, prob, Logistic)
}

// summarize applies an optional elementwise transform to each draw, then
// reduces column by column.
func summarize(s *SampleSet, name string, prob float64, transform func(float64) float64) (*Summary, error) {
	if s == nil {
		return nil, &ConfigurationError{Field: "s", Reason: "must not be nil"}
	}

	if prob <= 0 || prob >= 1 {
		return nil, &ConfigurationError{Field: "prob", Reason: fmt.Sprintf("must be in (0, 1), got %g", prob)}
	}

	dim, err := s.Dim(name)
	if err != nil {
		return nil, err
	}

	sm := &Summary{
		Name:  name,
		Prob:  prob,
		Mean:  make([]float64, dim),
		Lower: make([]float64, dim),
		Upper: make([]float64, dim),
	}

	tail := (1 - prob) / 2

	for j := 0; j < dim; j++ {
		col, err := s.column(name, j)
		if err != nil {
			return nil, err
		}

		if transform != nil {
			for i, v := range col {
				col[i] = transform(v)
			}
		}

		sm.Mean[j] = stat.Mean(col, nil)

		sort.Float64s(col)

		sm.Lower[j] = stat.Quantile(tail, stat.Empirical, col, nil)
		sm.Upper[j] = stat.Quantile(1-tail, stat.Empirical, col, nil)
	}

	return sm, nil
}
