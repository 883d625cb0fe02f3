package gpc

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

//////
// GP conditioning.
//////

// conditional is the Gaussian distribution of the latent function at new
// input locations, conditioned on latent values at the training inputs.
type conditional struct {
	// mean is mu_star = K(x*,x) K(x,x)^-1 f.
	mean *mat.VecDense

	// chol factors Sigma_star = K(x*,x*) - K(x*,x) K(x,x)^-1 K(x,x*)
	// (plus jitter).
	chol mat.Cholesky
}

// conditionGP computes the conditional Gaussian of the latent function at
// xStar given latent values f at the training inputs x, under the
// squared-exponential kernel with hyperparameters (alpha, rho).
//
// The training covariance is factored once and reused through triangular
// solves for both the mean and the covariance; no matrix is ever inverted
// explicitly, which would amplify conditioning error.
func conditionGP(x, f, xStar []float64, alpha, rho, jitter float64) (*conditional, error) {
	n := len(x)
	m := len(xStar)

	k := covarianceMatrix(x, alpha, rho, jitter)

	var kChol mat.Cholesky
	if !kChol.Factorize(k) {
		return nil, &NumericalInstabilityError{
			Stage:  "predictive",
			Matrix: "K(x,x)",
			Size:   n,
			Jitter: jitter,
		}
	}

	kStar := crossCovariance(xStar, x, alpha, rho)

	// mu_star = K(x*,x) * solve(K, f).
	kInvF := mat.NewVecDense(n, nil)
	if err := kChol.SolveVecTo(kInvF, mat.NewVecDense(n, f)); err != nil {
		return nil, &NumericalInstabilityError{
			Stage:  "predictive",
			Matrix: "K(x,x)",
			Size:   n,
			Jitter: jitter,
		}
	}

	mean := mat.NewVecDense(m, nil)
	mean.MulVec(kStar, kInvF)

	// W = L^-1 K(x,x*) by triangular solve, so the explained covariance
	// K(x*,x) K(x,x)^-1 K(x,x*) becomes the Gram matrix W^T W: exactly
	// symmetric and far better conditioned than a full solve against K.
	var l mat.TriDense

	kChol.LTo(&l)

	w := mat.DenseCopyOf(kStar.T())

	blas64.Trsm(blas.Left, blas.NoTrans, 1, l.RawTriangular(), w.RawMatrix())

	var explained mat.Dense
	explained.Mul(w.T(), w)

	// Sigma_star, with its own jitter so coincident prediction and training
	// points stay factorable.
	sigma := mat.NewSymDense(m, nil)
	diagJitter := jitter * alpha * alpha

	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			val := sqExpCov(alpha, rho, xStar[i], xStar[j]) - explained.At(i, j)

			if i == j {
				val += diagJitter
			}

			sigma.SetSym(i, j, val)
		}
	}

	cond := &conditional{mean: mean}

	if !cond.chol.Factorize(sigma) {
		return nil, &NumericalInstabilityError{
			Stage:  "predictive",
			Matrix: "Sigma(x*,x*)",
			Size:   m,
			Jitter: jitter,
		}
	}

	return cond, nil
}

//////
// Predictive extension.
//////

// PredictiveStrategy selects how the posterior fit is carried into the
// predictive distribution.
type PredictiveStrategy int

const (
	// StrategyPointEstimate conditions on posterior means of
	// (alpha, rho, f). One fit is reused across every prediction call, at
	// the cost of understating hyperparameter uncertainty. This is a
	// deliberate, documented approximation, not a defect.
	StrategyPointEstimate PredictiveStrategy = iota

	// StrategyFullMarginal conditions on each (thinned) posterior draw
	// separately and pools the resulting draws: stricter and more
	// expensive, propagating the full posterior uncertainty.
	StrategyFullMarginal
)

// PredictiveConfig controls the predictive-posterior stage.
type PredictiveConfig struct {
	// Strategy selects point-estimate plug-in or full marginalization.
	Strategy PredictiveStrategy

	// Draws is the number of f_star draws to produce under
	// StrategyPointEstimate.
	Draws int

	// Thin keeps every Thin-th posterior draw under StrategyFullMarginal
	// (1 keeps them all).
	Thin int

	// Jitter is the relative diagonal jitter for the conditioning solves.
	Jitter float64

	// Seed fixes the random stream of the predictive draws.
	Seed uint64
}

// DefaultPredictiveConfig returns the point-estimate strategy with 200 draws.
func DefaultPredictiveConfig() PredictiveConfig {
	return PredictiveConfig{
		Strategy: StrategyPointEstimate,
		Draws:    200,
		Thin:     10,
		Jitter:   1e-9,
		Seed:     uint64(time.Now().UnixNano()),
	}
}

// validate checks the predictive settings.
func (cfg PredictiveConfig) validate() error {
	if cfg.Strategy == StrategyPointEstimate && cfg.Draws <= 0 {
		return &ConfigurationError{Field: "Draws", Reason: fmt.Sprintf("must be positive, got %d", cfg.Draws)}
	}

	if cfg.Strategy == StrategyFullMarginal && cfg.Thin <= 0 {
		return &ConfigurationError{Field: "Thin", Reason: fmt.Sprintf("must be positive, got %d", cfg.Thin)}
	}

	if cfg.Jitter < 0 {
		return &ConfigurationError{Field: "Jitter", Reason: fmt.Sprintf("must be non-negative, got %g", cfg.Jitter)}
	}

	return nil
}

// ExtendPredictive computes the predictive posterior of the latent function
// at new input locations from a posterior fit.
//
// Parameters:
// - post: Posterior sample set from FitPosterior
// - ds: The training subset the posterior was fitted on
// - xStar: New input locations (may include, or equal, the training inputs)
// - cfg: Strategy, draw count, jitter and seed
//
// Returns:
// - *SampleSet: Draws of "f_star", indexed over xStar
//
// How it works:
// - StrategyPointEstimate reduces the posterior to its means and runs the
//   predictive model in fixed-parameter mode for cfg.Draws independent draws
//   from the conditional Gaussian.
// - StrategyFullMarginal walks the (thinned) posterior draws, conditions on
//   each draw's (alpha, rho, f) and produces one f_star draw per posterior
//   draw, pooling them into a single chain.
//
// Important notes:
// - When xStar coincides with training inputs the conditional collapses
//   smoothly: predictive variance there is jitter-scale, not negative
// - Draw counts: Draws under point-estimate; roughly
//   chains*iterations/Thin under full marginalization.
func ExtendPredictive(post *SampleSet, ds *Dataset, xStar []float64, cfg PredictiveConfig) (*SampleSet, error) {
	if post == nil {
		return nil, &ConfigurationError{Field: "post", Reason: "must not be nil"}
	}

	if ds == nil {
		return nil, &ConfigurationError{Field: "ds", Reason: "must not be nil"}
	}

	if len(xStar) == 0 {
		return nil, &ConfigurationError{Field: "xStar", Reason: "must contain at least one prediction location"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case StrategyFullMarginal:
		return extendFullMarginal(post, ds, xStar, cfg)
	default:
		est, err := EstimatePosterior(post)
		if err != nil {
			return nil, err
		}

		return extendPointEstimate(est, ds, xStar, cfg)
	}
}

// extendPointEstimate draws from the conditional Gaussian at the posterior
// means via the predictive model in fixed-parameter mode.
func extendPointEstimate(est *PosteriorEstimate, ds *Dataset, xStar []float64, cfg PredictiveConfig) (*SampleSet, error) {
	p := Payload{
		"n":      len(ds.X),
		"x":      ds.X,
		"f":      est.F,
		"alpha":  est.Alpha,
		"rho":    est.Rho,
		"n_star": len(xStar),
		"x_star": xStar,
	}

	return Sample(NewPredictiveModel(cfg.Jitter), p, SamplingConfig{
		Iterations: cfg.Draws,
		Chains:     1,
		Seed:       cfg.Seed,
		Algorithm:  AlgorithmFixedParam,
		Jitter:     cfg.Jitter,
	})
}

// extendFullMarginal conditions on each thinned posterior draw in turn,
// producing one f_star draw per posterior draw.
func extendFullMarginal(post *SampleSet, ds *Dataset, xStar []float64, cfg PredictiveConfig) (*SampleSet, error) {
	alpha, err := post.column("alpha", 0)
	if err != nil {
		return nil, err
	}

	rho, err := post.column("rho", 0)
	if err != nil {
		return nil, err
	}

	fDraws, err := post.Draws("f")
	if err != nil {
		return nil, err
	}

	kept := 0
	for i := 0; i < len(alpha); i += cfg.Thin {
		kept++
	}

	if kept == 0 {
		return nil, &ConfigurationError{Field: "post", Reason: "posterior sample set is empty"}
	}

	model := NewPredictiveModel(cfg.Jitter)

	set := newSampleSet(model.Name(), model.Outputs(), map[string]int{"f_star": len(xStar)}, 1, kept)

	src := randSource(cfg.Seed)

	for i, it := 0, 0; i < len(alpha); i, it = i+cfg.Thin, it+1 {
		p := Payload{
			"n":      len(ds.X),
			"x":      ds.X,
			"f":      copyFloats(fDraws.RawRowView(i)),
			"alpha":  alpha[i],
			"rho":    rho[i],
			"n_star": len(xStar),
			"x_star": xStar,
		}

		if err := model.Validate(p); err != nil {
			return nil, err
		}

		out, err := model.Generate(src, p)
		if err != nil {
			return nil, &SamplingFailure{
				Model:  model.Name(),
				Chain:  0,
				Reason: fmt.Sprintf("forward simulation failed at posterior draw %d", i),
				Err:    err,
			}
		}

		set.setDraw(0, it, out)
	}

	return set, nil
}
