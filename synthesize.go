package gpc

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/exp/constraints"
)

//////
// Data synthesis.
//////

// SynthesisConfig controls the generation of a synthetic binary-labeled
// dataset from a latent Gaussian process.
type SynthesisConfig struct {
	// GridSize is the number of evenly spaced input locations.
	GridSize int

	// GridMin and GridMax bound the input grid, inclusive.
	GridMin float64
	GridMax float64

	// Alpha is the true marginal standard deviation of the latent process.
	Alpha float64

	// Rho is the true length scale of the latent process.
	Rho float64

	// Jitter is the relative diagonal jitter used when factoring the
	// covariance of the latent draw.
	Jitter float64

	// Seed fixes the random stream; the same seed reproduces the same
	// (f, y) exactly.
	Seed uint64
}

// DefaultSynthesisConfig returns the reference scenario: 1000 grid points on
// [-1, 1], alpha = 5, rho = 0.1.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		GridSize: 1000,
		GridMin:  -1,
		GridMax:  1,
		Alpha:    5,
		Rho:      0.1,
		Jitter:   1e-9,
		Seed:     uint64(time.Now().UnixNano()),
	}
}

// validate checks the synthesis settings.
func (cfg SynthesisConfig) validate() error {
	if cfg.GridSize < 0 {
		return &ConfigurationError{Field: "GridSize", Reason: fmt.Sprintf("must be non-negative, got %d", cfg.GridSize)}
	}

	if cfg.GridSize > 1 && cfg.GridMin >= cfg.GridMax {
		return &ConfigurationError{
			Field:  "GridMin",
			Reason: fmt.Sprintf("grid bounds must satisfy GridMin < GridMax, got [%g, %g]", cfg.GridMin, cfg.GridMax),
		}
	}

	if cfg.Alpha <= 0 {
		return &ConfigurationError{Field: "Alpha", Reason: fmt.Sprintf("must be positive, got %g", cfg.Alpha)}
	}

	if cfg.Rho <= 0 {
		return &ConfigurationError{Field: "Rho", Reason: fmt.Sprintf("must be positive, got %g", cfg.Rho)}
	}

	if cfg.Jitter < 0 {
		return &ConfigurationError{Field: "Jitter", Reason: fmt.Sprintf("must be non-negative, got %g", cfg.Jitter)}
	}

	return nil
}

// SyntheticDataset is one joint draw from the generative model: the input
// grid, the latent function values, and the binary labels. Immutable once
// generated.
type SyntheticDataset struct {
	// Grid holds the strictly increasing input locations.
	Grid []float64

	// Latent holds the latent function draw, one value per grid point.
	Latent []float64

	// Labels holds the Bernoulli outcomes (0 or 1), one per grid point.
	Labels []float64
}

// Dataset is the training subset fed to posterior inference: paired inputs
// and binary observations. Immutable once derived.
type Dataset struct {
	// X holds the training inputs, sorted ascending.
	X []float64

	// Y holds the binary observations paired with X.
	Y []float64
}

// NewDataset builds a training set from caller-supplied inputs and integer
// class labels, for fitting real data instead of a synthetic draw.
//
// Important notes:
// - Labels must all be 0 or 1
// - The slices are copied; the caller's data is not retained.
func NewDataset[T constraints.Integer](x []float64, y []T) (*Dataset, error) {
	if len(x) != len(y) {
		return nil, &ConfigurationError{
			Field:  "y",
			Reason: fmt.Sprintf("length mismatch: %d inputs, %d labels", len(x), len(y)),
		}
	}

	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, &ConfigurationError{
				Field:  "y",
				Reason: fmt.Sprintf("element %d is %d, labels must be 0 or 1", i, v),
			}
		}
	}

	return &Dataset{
		X: copyFloats(x),
		Y: toFloat64s(y),
	}, nil
}

// Synthesize draws one synthetic binary-labeled dataset from a zero-mean
// Gaussian process squashed through the logistic link.
//
// How it works:
//  1. Builds an evenly spaced grid of cfg.GridSize points on
//     [cfg.GridMin, cfg.GridMax].
//  2. Runs the generation model in fixed-parameter mode: one joint draw of
//     f ~ N(0, K(X,X) + jitter*I) via the covariance's Cholesky factor, then
//     y_i ~ Bernoulli(logistic(f_i)).
//
// Important notes:
// - Deterministic given cfg.Seed
// - A zero-size grid yields empty outputs, not an error
// - A failed covariance factorization surfaces as NumericalInstabilityError
//   wrapped in a SamplingFailure.
func Synthesize(cfg SynthesisConfig) (*SyntheticDataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// An empty grid yields empty outputs, not an error.
	if cfg.GridSize == 0 {
		return &SyntheticDataset{
			Grid:   []float64{},
			Latent: []float64{},
			Labels: []float64{},
		}, nil
	}

	grid := linspace(cfg.GridMin, cfg.GridMax, cfg.GridSize)

	p := Payload{
		"n":     cfg.GridSize,
		"x":     grid,
		"alpha": cfg.Alpha,
		"rho":   cfg.Rho,
	}

	set, err := Sample(NewGenerationModel(cfg.Jitter), p, SamplingConfig{
		Iterations: 1,
		Chains:     1,
		Seed:       cfg.Seed,
		Algorithm:  AlgorithmFixedParam,
		Jitter:     cfg.Jitter,
	})
	if err != nil {
		return nil, err
	}

	f, err := set.ChainDraws(0, "f")
	if err != nil {
		return nil, err
	}

	y, err := set.ChainDraws(0, "y")
	if err != nil {
		return nil, err
	}

	return &SyntheticDataset{
		Grid:   grid,
		Latent: copyFloats(f.RawRowView(0)),
		Labels: copyFloats(y.RawRowView(0)),
	}, nil
}

// Subsample derives a training subset of size n by uniform sampling without
// replacement, with the chosen indices sorted ascending before subsetting.
//
// Important notes:
// - Indices are unique and the subset has exactly n elements
// - n must not exceed the grid size
// - Deterministic given seed; the parent dataset is not modified.
func (d *SyntheticDataset) Subsample(n int, seed uint64) (*Dataset, error) {
	if n < 0 || n > len(d.Grid) {
		return nil, &ConfigurationError{
			Field:  "n",
			Reason: fmt.Sprintf("subset size must be in [0, %d], got %d", len(d.Grid), n),
		}
	}

	rng := rand.New(rand.NewPCG(seed, 0))

	idx := rng.Perm(len(d.Grid))[:n]
	sort.Ints(idx)

	ds := &Dataset{
		X: make([]float64, n),
		Y: make([]float64, n),
	}

	for i, j := range idx {
		ds.X[i] = d.Grid[j]
		ds.Y[i] = d.Labels[j]
	}

	return ds, nil
}
