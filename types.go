package gpc

import (
	"fmt"
	"time"
)

//////
// Payload.
//////

// Payload carries the named scalars and arrays a model consumes: `n`, `x`,
// `y`, `alpha`, `rho`, `n_star`, `x_star`, `f`, as applicable per model.
//
// Usage example:
//
//	p := gpc.Payload{
//	    "n":     3,
//	    "x":     []float64{-1, 0, 1},
//	    "alpha": 5.0,
//	    "rho":   0.1,
//	}
//
// Counts are Go ints, scalars float64, arrays []float64. A missing or
// wrongly-typed entry surfaces as a ConfigurationError before any sampling
// work starts.
type Payload map[string]any

// count extracts a non-negative integer entry.
func (p Payload) count(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, &ConfigurationError{Field: key, Reason: "missing payload entry"}
	}

	n, ok := v.(int)
	if !ok {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("expected int, got %T", v)}
	}

	if n < 0 {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("must be non-negative, got %d", n)}
	}

	return n, nil
}

// scalar extracts a float64 entry.
func (p Payload) scalar(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, &ConfigurationError{Field: key, Reason: "missing payload entry"}
	}

	f, ok := v.(float64)
	if !ok {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("expected float64, got %T", v)}
	}

	return f, nil
}

// positiveScalar extracts a float64 entry that must be strictly positive.
func (p Payload) positiveScalar(key string) (float64, error) {
	f, err := p.scalar(key)
	if err != nil {
		return 0, err
	}

	if f <= 0 {
		return 0, &ConfigurationError{Field: key, Reason: fmt.Sprintf("must be positive, got %g", f)}
	}

	return f, nil
}

// vector extracts a []float64 entry of the given length.
func (p Payload) vector(key string, length int) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return nil, &ConfigurationError{Field: key, Reason: "missing payload entry"}
	}

	vs, ok := v.([]float64)
	if !ok {
		return nil, &ConfigurationError{Field: key, Reason: fmt.Sprintf("expected []float64, got %T", v)}
	}

	if len(vs) != length {
		return nil, &ConfigurationError{
			Field:  key,
			Reason: fmt.Sprintf("length mismatch: expected %d elements, got %d", length, len(vs)),
		}
	}

	return vs, nil
}

//////
// Sampling configuration.
//////

// Algorithm selects how Sample produces draws from a model.
type Algorithm int

const (
	// AlgorithmSampling runs an adaptive random-walk Metropolis chain over
	// the model's log density, discarding warmup iterations.
	AlgorithmSampling Algorithm = iota

	// AlgorithmFixedParam runs no Markov chain at all: every iteration is an
	// independent forward simulation from the model with its parameters held
	// fixed. Used for deterministic-parameter generation and prediction.
	AlgorithmFixedParam
)

// SamplingConfig controls a call to Sample.
//
// Fields explanation:
// - Iterations: Post-warmup draws kept per chain
// - Warmup: Discarded adaptation iterations per chain (sampling mode only)
// - Chains: Number of independent chains, run in parallel
// - Seed: Base random seed; each chain derives its own stream from it
// - Algorithm: Iterative sampling or fixed-parameter forward simulation
// - StepSize: Initial random-walk proposal scale (sampling mode only)
// - TargetAcceptance: Acceptance rate the warmup adaptation aims for
// - Jitter: Relative diagonal jitter for covariance factorizations
// - MaxDuration: Wall-clock safety valve per call; 0 means unlimited
// - ProgressChan: Optional channel receiving per-chain completion updates.
type SamplingConfig struct {
	// Iterations is the number of post-warmup draws kept per chain.
	Iterations int

	// Warmup is the number of adaptation iterations discarded from the start
	// of each chain. Ignored in fixed-parameter mode.
	Warmup int

	// Chains is the number of independent chains. Chains share nothing and
	// run concurrently, synchronizing only to collect their draws.
	Chains int

	// Seed is the base random seed. Chain c uses the stream (Seed, c), so a
	// fixed seed reproduces every chain exactly, in any execution order.
	Seed uint64

	// Algorithm selects iterative sampling or fixed-parameter simulation.
	Algorithm Algorithm

	// StepSize is the initial proposal standard deviation for the random
	// walk. Warmup adapts it toward TargetAcceptance.
	StepSize float64

	// TargetAcceptance is the acceptance rate the warmup adaptation aims
	// for. The random-walk optimum for non-trivial dimension is near 0.234.
	TargetAcceptance float64

	// Jitter is the relative diagonal jitter added whenever a covariance
	// matrix is factored during sampling.
	Jitter float64

	// MaxDuration caps the wall-clock time of the whole call. Exceeding it
	// surfaces as a SamplingFailure. Zero disables the cap.
	MaxDuration time.Duration

	// ProgressChan receives an update as each chain finishes. Sends never
	// block; updates are dropped if the channel is full. Nil disables them.
	ProgressChan chan<- ProgressUpdate
}

// validate checks the settings common to both algorithms.
func (cfg SamplingConfig) validate() error {
	if cfg.Chains <= 0 {
		return &ConfigurationError{Field: "Chains", Reason: fmt.Sprintf("must be positive, got %d", cfg.Chains)}
	}

	if cfg.Iterations <= 0 {
		return &ConfigurationError{Field: "Iterations", Reason: fmt.Sprintf("must be positive, got %d", cfg.Iterations)}
	}

	if cfg.Warmup < 0 {
		return &ConfigurationError{Field: "Warmup", Reason: fmt.Sprintf("must be non-negative, got %d", cfg.Warmup)}
	}

	if cfg.Algorithm == AlgorithmSampling {
		if cfg.StepSize <= 0 {
			return &ConfigurationError{Field: "StepSize", Reason: fmt.Sprintf("must be positive, got %g", cfg.StepSize)}
		}

		if cfg.TargetAcceptance <= 0 || cfg.TargetAcceptance >= 1 {
			return &ConfigurationError{
				Field:  "TargetAcceptance",
				Reason: fmt.Sprintf("must be in (0, 1), got %g", cfg.TargetAcceptance),
			}
		}
	}

	if cfg.Jitter < 0 {
		return &ConfigurationError{Field: "Jitter", Reason: fmt.Sprintf("must be non-negative, got %g", cfg.Jitter)}
	}

	return nil
}

//////
// Priors.
//////

// PriorConfig holds the weakly-informative priors on the kernel
// hyperparameters used by the posterior model.
//
// alpha is given a half-normal prior (positive-constrained, mass near zero
// decaying at the hyperparameter's scale); rho an inverse-gamma prior
// (positive-constrained, penalizing length scales collapsing to zero).
type PriorConfig struct {
	// AlphaScale is the scale of the half-normal prior on the marginal
	// standard deviation alpha.
	AlphaScale float64

	// RhoShape is the shape parameter of the inverse-gamma prior on the
	// length scale rho.
	RhoShape float64

	// RhoScale is the scale parameter of the inverse-gamma prior on rho.
	RhoScale float64
}

// DefaultPriorConfig returns weakly-informative defaults: alpha ~
// HalfNormal(5), rho ~ InverseGamma(3, 1).
func DefaultPriorConfig() PriorConfig {
	return PriorConfig{
		AlphaScale: 5.0,
		RhoShape:   3.0,
		RhoScale:   1.0,
	}
}

// validate checks prior hyperparameters for positivity.
func (cfg PriorConfig) validate() error {
	if cfg.AlphaScale <= 0 {
		return &ConfigurationError{Field: "AlphaScale", Reason: fmt.Sprintf("must be positive, got %g", cfg.AlphaScale)}
	}

	if cfg.RhoShape <= 0 {
		return &ConfigurationError{Field: "RhoShape", Reason: fmt.Sprintf("must be positive, got %g", cfg.RhoShape)}
	}

	if cfg.RhoScale <= 0 {
		return &ConfigurationError{Field: "RhoScale", Reason: fmt.Sprintf("must be positive, got %g", cfg.RhoScale)}
	}

	return nil
}

//////
// Progress reporting.
//////

// ProgressUpdate represents the current state of a workflow or sampling run.
type ProgressUpdate struct {
	// Phase names the stage currently running ("Synthesis", "Subsample",
	// "Posterior", "Predictive", "Summary").
	Phase string

	// Chain is the chain the update refers to, or -1 for stage-level
	// updates.
	Chain int

	// CurrentStep is the number of completed units within the phase.
	CurrentStep int

	// TotalSteps is the number of units the phase will complete.
	TotalSteps int
}

// sendProgress delivers an update without ever blocking the sampler: if the
// channel is full the update is dropped.
func sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}

	select {
	case ch <- update:
	default:
		// Skip update if channel is full.
	}
}
