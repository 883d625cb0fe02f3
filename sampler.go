package gpc

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

//////
// Exported functionalities.
//////

// DefaultSamplingConfig returns a default sampling configuration.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Iterations:       2000,
		Warmup:           1000,
		Chains:           4,
		Seed:             uint64(time.Now().UnixNano()),
		Algorithm:        AlgorithmSampling,
		StepSize:         0.1,
		TargetAcceptance: 0.234,
		Jitter:           1e-9,
		ProgressChan:     nil, // Default to no progress updates.
	}
}

// Sample produces draws from a model: the single entry point behind which
// every stage of the workflow runs.
//
// Parameters:
// - model: The density/generative specification to run
// - p: Named scalars and arrays the model consumes
// - cfg: SamplingConfig controlling chains, iterations, warmup, seed,
//   algorithm and the wall-clock cap
//
// Returns:
// - *SampleSet: Per-chain, per-iteration named draws
//
// How it works:
//  1. Validates the configuration and the payload; violations surface as
//     ConfigurationError before any sampling work starts.
//  2. Runs cfg.Chains independent chains concurrently. Chains share no
//     mutable state and derive their random streams from (cfg.Seed, chain),
//     so results are reproducible regardless of scheduling.
//  3. In sampling mode each chain is an adaptive random-walk Metropolis run
//     over the model's log density: warmup iterations adapt the proposal
//     scale toward cfg.TargetAcceptance and are discarded. In
//     fixed-parameter mode each iteration is an independent forward
//     simulation.
//  4. Collects the chains' draws into one SampleSet.
//
// Important notes:
// - Convergence is not verified here; inspect diagnostics (potential scale
//   reduction, effective sample size) on the returned draws
// - Failures (density evaluation errors, no accepted proposals, wall-clock
//   cap) surface as SamplingFailure and are never retried automatically
// - A fixed cfg.Seed reproduces every draw exactly.
func Sample(model Model, p Payload, cfg SamplingConfig) (*SampleSet, error) {
	if model == nil {
		return nil, &ConfigurationError{Field: "model", Reason: "must not be nil"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := model.Validate(p); err != nil {
		return nil, err
	}

	names := model.Outputs()

	dims := make(map[string]int, len(names))
	for _, name := range names {
		d, err := model.OutputDim(name, p)
		if err != nil {
			return nil, err
		}

		if d == 0 {
			return nil, &ConfigurationError{Field: name, Reason: "output has zero width; nothing to sample"}
		}

		dims[name] = d
	}

	set := newSampleSet(model.Name(), names, dims, cfg.Chains, cfg.Iterations)

	var deadline time.Time
	if cfg.MaxDuration > 0 {
		deadline = time.Now().Add(cfg.MaxDuration)
	}

	// completed tracks finished chains for progress reporting.
	var (
		completed   int
		completedMu sync.Mutex
	)

	chainDone := func(chain int) {
		completedMu.Lock()
		completed++
		done := completed
		completedMu.Unlock()

		sendProgress(cfg.ProgressChan, ProgressUpdate{
			Phase:       model.Name(),
			Chain:       chain,
			CurrentStep: done,
			TotalSteps:  cfg.Chains,
		})
	}

	// Chains are independent and share nothing; they synchronize only here,
	// at collection time.
	errs := make([]error, cfg.Chains)

	var wg sync.WaitGroup

	for chain := 0; chain < cfg.Chains; chain++ {
		wg.Add(1)

		go func(chain int) {
			defer wg.Done()

			switch cfg.Algorithm {
			case AlgorithmFixedParam:
				errs[chain] = runFixedParamChain(model, p, cfg, chain, set, deadline)
			default:
				errs[chain] = runSamplingChain(model, p, cfg, chain, set, deadline)
			}

			if errs[chain] == nil {
				chainDone(chain)
			}
		}(chain)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return set, nil
}

//////
// Chain runners.
//////

// runFixedParamChain fills one chain with independent forward simulations.
func runFixedParamChain(model Model, p Payload, cfg SamplingConfig, chain int, set *SampleSet, deadline time.Time) error {
	gen, ok := model.(GenerativeModel)
	if !ok {
		return &ConfigurationError{
			Field:  "Algorithm",
			Reason: fmt.Sprintf("model %q does not support fixed-parameter simulation", model.Name()),
		}
	}

	src := rand.NewPCG(cfg.Seed, uint64(chain))

	for it := 0; it < cfg.Iterations; it++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return &SamplingFailure{
				Model:  model.Name(),
				Chain:  chain,
				Reason: fmt.Sprintf("wall-clock cap of %v exceeded", cfg.MaxDuration),
			}
		}

		out, err := gen.Generate(src, p)
		if err != nil {
			return &SamplingFailure{
				Model:  model.Name(),
				Chain:  chain,
				Reason: "forward simulation failed",
				Err:    err,
			}
		}

		set.setDraw(chain, it, out)
	}

	return nil
}

// runSamplingChain runs one adaptive random-walk Metropolis chain over the
// model's log density and stores its post-warmup draws.
func runSamplingChain(model Model, p Payload, cfg SamplingConfig, chain int, set *SampleSet, deadline time.Time) error {
	dens, ok := model.(DensityModel)
	if !ok {
		return &ConfigurationError{
			Field:  "Algorithm",
			Reason: fmt.Sprintf("model %q does not expose a log density", model.Name()),
		}
	}

	dim, err := dens.Dimension(p)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(chain)))

	// Find a finite-density starting point near the origin of the
	// unconstrained space.
	const initAttempts = 100

	theta := make([]float64, dim)

	var cur float64

	initialized := false

	for attempt := 0; attempt < initAttempts; attempt++ {
		for i := range theta {
			theta[i] = 0.1 * rng.NormFloat64()
		}

		cur, err = dens.LogDensity(theta, p)
		if err != nil {
			return &SamplingFailure{
				Model:  model.Name(),
				Chain:  chain,
				Reason: "density evaluation failed during initialization",
				Err:    err,
			}
		}

		if !math.IsInf(cur, -1) && !math.IsNaN(cur) {
			initialized = true
			break
		}
	}

	if !initialized {
		return &SamplingFailure{
			Model:  model.Name(),
			Chain:  chain,
			Reason: fmt.Sprintf("no finite-density initial point found in %d attempts", initAttempts),
		}
	}

	// Output buffers, reused across iterations.
	out := make(map[string][]float64, len(set.names))
	for _, name := range set.names {
		out[name] = make([]float64, set.dims[name])
	}

	prop := make([]float64, dim)

	logStep := math.Log(cfg.StepSize)
	total := cfg.Warmup + cfg.Iterations
	accepted := 0

	for it := 0; it < total; it++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return &SamplingFailure{
				Model:  model.Name(),
				Chain:  chain,
				Reason: fmt.Sprintf("wall-clock cap of %v exceeded", cfg.MaxDuration),
			}
		}

		step := math.Exp(logStep)

		for i := range prop {
			prop[i] = theta[i] + step*rng.NormFloat64()
		}

		lp, err := dens.LogDensity(prop, p)
		if err != nil {
			return &SamplingFailure{
				Model:  model.Name(),
				Chain:  chain,
				Reason: fmt.Sprintf("density evaluation failed at iteration %d", it),
				Err:    err,
			}
		}

		// A NaN density rejects the proposal rather than poisoning the chain.
		if math.IsNaN(lp) {
			lp = math.Inf(-1)
		}

		logRatio := lp - cur

		if logRatio >= 0 || math.Log(rng.Float64()) < logRatio {
			copy(theta, prop)
			cur = lp

			if it >= cfg.Warmup {
				accepted++
			}
		}

		if it < cfg.Warmup {
			// Robbins-Monro adaptation of the log step size toward the
			// target acceptance rate, with a decaying learning rate.
			acceptProb := math.Min(1, math.Exp(logRatio))
			logStep += (acceptProb - cfg.TargetAcceptance) / math.Sqrt(float64(it+1))
		} else {
			if err := dens.Transform(theta, p, out); err != nil {
				return &SamplingFailure{
					Model:  model.Name(),
					Chain:  chain,
					Reason: "output transform failed",
					Err:    err,
				}
			}

			set.setDraw(chain, it-cfg.Warmup, out)
		}
	}

	if accepted == 0 {
		return &SamplingFailure{
			Model:  model.Name(),
			Chain:  chain,
			Reason: fmt.Sprintf("all %d post-warmup proposals rejected", cfg.Iterations),
		}
	}

	return nil
}
