package gpc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//////
// Sample storage.
//////

// SampleSet holds the draws produced by one sampling call, grouped by chain
// and by named output. Within a name, draws form a matrix with one row per
// post-warmup iteration and one column per coordinate (e.g. one column per
// training input for "f", a single column for "alpha").
//
// Important notes:
// - Raw per-chain, per-iteration draws stay accessible so convergence
//   diagnostics can be computed externally
// - A SampleSet is immutable after the sampling call that produced it;
//   downstream code only reduces it
// - Accessors return live views, not copies; treat them as read-only.
type SampleSet struct {
	// model is the name of the specification that produced the draws.
	model string

	// names lists the outputs, in the model's declared order.
	names []string

	// dims maps output name to per-draw width.
	dims map[string]int

	// iterations is the number of kept draws per chain.
	iterations int

	// chains[c][name] is the iterations-by-dims[name] draw matrix of chain c.
	chains []map[string]*mat.Dense
}

// newSampleSet allocates storage for the given shape.
func newSampleSet(model string, names []string, dims map[string]int, chains, iterations int) *SampleSet {
	s := &SampleSet{
		model:      model,
		names:      names,
		dims:       dims,
		iterations: iterations,
		chains:     make([]map[string]*mat.Dense, chains),
	}

	for c := range s.chains {
		s.chains[c] = make(map[string]*mat.Dense, len(names))

		for _, name := range names {
			s.chains[c][name] = mat.NewDense(iterations, dims[name], nil)
		}
	}

	return s
}

// setDraw writes one draw's named outputs into chain c at iteration it.
func (s *SampleSet) setDraw(c, it int, out map[string][]float64) {
	for _, name := range s.names {
		s.chains[c][name].SetRow(it, out[name])
	}
}

// ModelName returns the name of the specification that produced the draws.
func (s *SampleSet) ModelName() string { return s.model }

// Names lists the named outputs present in the set.
func (s *SampleSet) Names() []string { return s.names }

// Chains returns the number of independent chains in the set.
func (s *SampleSet) Chains() int { return len(s.chains) }

// Iterations returns the number of kept draws per chain.
func (s *SampleSet) Iterations() int { return s.iterations }

// Dim returns the per-draw width of the named output.
func (s *SampleSet) Dim(name string) (int, error) {
	d, ok := s.dims[name]
	if !ok {
		return 0, &ConfigurationError{Field: name, Reason: "no such output in sample set"}
	}

	return d, nil
}

// ChainDraws returns the draw matrix of one chain for the named output: rows
// are iterations, columns coordinates.
func (s *SampleSet) ChainDraws(chain int, name string) (*mat.Dense, error) {
	if chain < 0 || chain >= len(s.chains) {
		return nil, &ConfigurationError{
			Field:  "chain",
			Reason: fmt.Sprintf("index %d out of range, have %d chains", chain, len(s.chains)),
		}
	}

	d, ok := s.chains[chain][name]
	if !ok {
		return nil, &ConfigurationError{Field: name, Reason: "no such output in sample set"}
	}

	return d, nil
}

// Draws returns the named output with all chains stacked: rows run through
// chain 0's iterations first, then chain 1's, and so on.
func (s *SampleSet) Draws(name string) (*mat.Dense, error) {
	dim, err := s.Dim(name)
	if err != nil {
		return nil, err
	}

	stacked := mat.NewDense(len(s.chains)*s.iterations, dim, nil)

	for c := range s.chains {
		for it := 0; it < s.iterations; it++ {
			stacked.SetRow(c*s.iterations+it, s.chains[c][name].RawRowView(it))
		}
	}

	return stacked, nil
}

// column gathers one coordinate of the named output across all chains and
// iterations, chain-major.
func (s *SampleSet) column(name string, j int) ([]float64, error) {
	dim, err := s.Dim(name)
	if err != nil {
		return nil, err
	}

	if j < 0 || j >= dim {
		return nil, &ConfigurationError{
			Field:  name,
			Reason: fmt.Sprintf("coordinate %d out of range, output has width %d", j, dim),
		}
	}

	out := make([]float64, 0, len(s.chains)*s.iterations)

	for c := range s.chains {
		draws := s.chains[c][name]
		for it := 0; it < s.iterations; it++ {
			out = append(out, draws.At(it, j))
		}
	}

	return out, nil
}
