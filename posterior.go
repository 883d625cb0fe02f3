package gpc

import "gonum.org/v1/gonum/stat"

//////
// Posterior inference.
//////

// FitPosterior samples the joint posterior over the kernel hyperparameters
// and the latent function values at the training inputs:
//
//	GP(f | x, alpha, rho) * HalfNormal(alpha) * InvGamma(rho)
//	  * prod_i Bernoulli(y_i | logistic(f_i))
//
// Parameters:
// - ds: Training subset (paired inputs and binary observations)
// - priors: Weakly-informative priors on alpha and rho
// - cfg: Sampling configuration (chains, iterations, warmup, seed, jitter)
//
// Returns:
// - *SampleSet: Raw per-chain draws of "alpha", "rho" and "f"
//
// Important notes:
// - cfg.Algorithm is forced to AlgorithmSampling; the posterior has no
//   fixed-parameter mode
// - Convergence is not verified here: compute PotentialScaleReduction and
//   EffectiveSampleSize on the returned draws before trusting them
// - A covariance factorization failure at any density evaluation surfaces as
//   a SamplingFailure wrapping a NumericalInstabilityError, with no retry.
func FitPosterior(ds *Dataset, priors PriorConfig, cfg SamplingConfig) (*SampleSet, error) {
	if ds == nil {
		return nil, &ConfigurationError{Field: "ds", Reason: "must not be nil"}
	}

	cfg.Algorithm = AlgorithmSampling

	p := Payload{
		"n": len(ds.X),
		"x": ds.X,
		"y": ds.Y,
	}

	return Sample(NewPosteriorModel(priors, cfg.Jitter), p, cfg)
}

// PosteriorEstimate holds pointwise posterior means: the point estimates the
// predictive stage plugs into the GP conditioning formulas.
type PosteriorEstimate struct {
	// Alpha is the posterior mean of the marginal standard deviation.
	Alpha float64

	// Rho is the posterior mean of the length scale.
	Rho float64

	// F holds the posterior mean of the latent function at each training
	// input.
	F []float64
}

// EstimatePosterior reduces a posterior sample set to its pointwise means
// across all chains and iterations.
func EstimatePosterior(s *SampleSet) (*PosteriorEstimate, error) {
	if s == nil {
		return nil, &ConfigurationError{Field: "s", Reason: "must not be nil"}
	}

	alpha, err := s.column("alpha", 0)
	if err != nil {
		return nil, err
	}

	rho, err := s.column("rho", 0)
	if err != nil {
		return nil, err
	}

	dim, err := s.Dim("f")
	if err != nil {
		return nil, err
	}

	est := &PosteriorEstimate{
		Alpha: stat.Mean(alpha, nil),
		Rho:   stat.Mean(rho, nil),
		F:     make([]float64, dim),
	}

	for j := 0; j < dim; j++ {
		col, err := s.column("f", j)
		if err != nil {
			return nil, err
		}

		est.F[j] = stat.Mean(col, nil)
	}

	return est, nil
}
