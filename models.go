package gpc

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Model interfaces.
//////

// Model is an opaque named density/generative specification: the contract
// between the workflow stages and the sampling engine. A model declares which
// named outputs it produces and validates the data payload it is given;
// everything else depends on which mode it supports.
//
// The three shipped models are:
// - "generation": forward-simulates (f, y) from fixed hyperparameters
// - "posterior": the joint posterior density over (alpha, rho, f)
// - "predictive": forward-simulates f_star by Gaussian conditioning
//
// Any engine that understands this interface can replace the built-in one
// without touching the workflow stages.
type Model interface {
	// Name identifies the specification, e.g. in errors.
	Name() string

	// Outputs lists the named arrays each draw produces.
	Outputs() []string

	// Validate checks the payload before any sampling starts. Violations are
	// ConfigurationError values.
	Validate(p Payload) error

	// OutputDim reports the per-draw width of a named output for the given
	// payload.
	OutputDim(name string, p Payload) (int, error)
}

// DensityModel is a Model that can be sampled iteratively: it exposes an
// unconstrained parameter vector, its joint log density, and the transform
// from a raw draw to the named, constrained outputs.
type DensityModel interface {
	Model

	// Dimension returns the size of the unconstrained parameter vector for
	// the given payload.
	Dimension(p Payload) (int, error)

	// LogDensity evaluates the joint unnormalized log density at theta.
	// Returning -Inf rejects theta; returning an error aborts the chain.
	LogDensity(theta []float64, p Payload) (float64, error)

	// Transform maps an unconstrained draw to named output arrays, writing
	// into out (sized per Outputs/Dimension).
	Transform(theta []float64, p Payload, out map[string][]float64) error
}

// GenerativeModel is a Model that supports fixed-parameter forward
// simulation: each draw is generated independently, no Markov chain involved.
type GenerativeModel interface {
	Model

	// Generate produces one independent joint draw of the model's outputs.
	Generate(src rand.Source, p Payload) (map[string][]float64, error)
}

// Unconstrained hyperparameters are sampled on the log scale; proposals this
// far out would overflow exp and can be rejected outright.
const logScaleBound = 30

//////
// Generation model.
//////

// generationModel draws a latent function from a zero-mean GP with fixed
// hyperparameters over the payload's input grid, then Bernoulli outcomes
// through the logistic link.
//
// Payload: n, x, alpha, rho. Outputs: f, y.
type generationModel struct {
	jitter float64
}

// NewGenerationModel returns the data-generation specification with the
// given relative diagonal jitter.
func NewGenerationModel(jitter float64) GenerativeModel {
	return &generationModel{jitter: jitter}
}

func (m *generationModel) Name() string { return "generation" }

func (m *generationModel) Outputs() []string { return []string{"f", "y"} }

func (m *generationModel) OutputDim(name string, p Payload) (int, error) {
	switch name {
	case "f", "y":
		return p.count("n")
	}

	return 0, &ConfigurationError{Field: name, Reason: "unknown output"}
}

func (m *generationModel) Validate(p Payload) error {
	n, err := p.count("n")
	if err != nil {
		return err
	}

	if _, err := p.vector("x", n); err != nil {
		return err
	}

	if _, err := p.positiveScalar("alpha"); err != nil {
		return err
	}

	if _, err := p.positiveScalar("rho"); err != nil {
		return err
	}

	return nil
}

func (m *generationModel) Generate(src rand.Source, p Payload) (map[string][]float64, error) {
	n, _ := p.count("n")

	// An empty grid yields empty outputs, not an error.
	if n == 0 {
		return map[string][]float64{"f": {}, "y": {}}, nil
	}

	x, _ := p.vector("x", n)
	alpha, _ := p.scalar("alpha")
	rho, _ := p.scalar("rho")

	k := covarianceMatrix(x, alpha, rho, m.jitter)

	var chol mat.Cholesky
	if !chol.Factorize(k) {
		return nil, &NumericalInstabilityError{
			Stage:  m.Name(),
			Matrix: "K(x,x)",
			Size:   n,
			Jitter: m.jitter,
		}
	}

	rng := rand.New(src)

	f := drawGaussian(nil, &chol, rng.NormFloat64)

	y := make([]float64, n)
	for i := range y {
		y[i] = distuv.Bernoulli{P: Logistic(f[i]), Src: src}.Rand()
	}

	return map[string][]float64{"f": f, "y": y}, nil
}

//////
// Posterior model.
//////

// posteriorModel is the joint posterior density over (alpha, rho, f) given a
// binary-labeled training set:
//
//	GP(f | x, alpha, rho) * HalfNormal(alpha) * InvGamma(rho)
//	  * prod_i Bernoulli(y_i | logistic(f_i))
//
// The unconstrained parameter vector is [log alpha, log rho, f...]; the log
// transforms keep the hyperparameters positive and contribute the usual
// Jacobian terms to the density.
//
// Payload: n, x, y. Outputs: alpha, rho, f.
type posteriorModel struct {
	priors PriorConfig
	jitter float64
}

// NewPosteriorModel returns the posterior-inference specification with the
// given priors and relative diagonal jitter.
func NewPosteriorModel(priors PriorConfig, jitter float64) DensityModel {
	return &posteriorModel{priors: priors, jitter: jitter}
}

func (m *posteriorModel) Name() string { return "posterior" }

func (m *posteriorModel) Outputs() []string { return []string{"alpha", "rho", "f"} }

func (m *posteriorModel) Validate(p Payload) error {
	if err := m.priors.validate(); err != nil {
		return err
	}

	n, err := p.count("n")
	if err != nil {
		return err
	}

	if n == 0 {
		return &ConfigurationError{Field: "n", Reason: "posterior inference needs at least one observation"}
	}

	if _, err := p.vector("x", n); err != nil {
		return err
	}

	y, err := p.vector("y", n)
	if err != nil {
		return err
	}

	for i, v := range y {
		if v != 0 && v != 1 {
			return &ConfigurationError{
				Field:  "y",
				Reason: fmt.Sprintf("element %d is %g, observations must be 0 or 1", i, v),
			}
		}
	}

	return nil
}

func (m *posteriorModel) Dimension(p Payload) (int, error) {
	n, err := p.count("n")
	if err != nil {
		return 0, err
	}

	return n + 2, nil
}

func (m *posteriorModel) LogDensity(theta []float64, p Payload) (float64, error) {
	n, _ := p.count("n")
	x, _ := p.vector("x", n)
	y, _ := p.vector("y", n)

	logAlpha, logRho := theta[0], theta[1]
	if math.Abs(logAlpha) > logScaleBound || math.Abs(logRho) > logScaleBound {
		return math.Inf(-1), nil
	}

	alpha := math.Exp(logAlpha)
	rho := math.Exp(logRho)
	f := theta[2:]

	k := covarianceMatrix(x, alpha, rho, m.jitter)

	var chol mat.Cholesky
	if !chol.Factorize(k) {
		return 0, &NumericalInstabilityError{
			Stage:  m.Name(),
			Matrix: "K(x,x)",
			Size:   n,
			Jitter: m.jitter,
		}
	}

	fVec := mat.NewVecDense(n, f)

	lp, err := gaussianLogDensity(fVec, &chol)
	if err != nil {
		return 0, err
	}

	// Hyperparameter priors, with the log-scale Jacobians.
	lp += halfNormalLogProb(alpha, m.priors.AlphaScale) + logAlpha
	lp += distuv.InverseGamma{Alpha: m.priors.RhoShape, Beta: m.priors.RhoScale}.LogProb(rho) + logRho

	// Bernoulli likelihood through the logistic link.
	for i := 0; i < n; i++ {
		lp += bernoulliLogProb(y[i], f[i])
	}

	return lp, nil
}

func (m *posteriorModel) Transform(theta []float64, _ Payload, out map[string][]float64) error {
	out["alpha"][0] = math.Exp(theta[0])
	out["rho"][0] = math.Exp(theta[1])
	copy(out["f"], theta[2:])

	return nil
}

func (m *posteriorModel) OutputDim(name string, p Payload) (int, error) {
	switch name {
	case "alpha", "rho":
		return 1, nil
	case "f":
		return p.count("n")
	}

	return 0, &ConfigurationError{Field: name, Reason: "unknown output"}
}

//////
// Predictive model.
//////

// predictiveModel forward-simulates the latent function at new input
// locations by conditioning a GP on point estimates of (alpha, rho, f) at
// the training inputs.
//
// Payload: n, x, f, alpha, rho, n_star, x_star. Outputs: f_star.
type predictiveModel struct {
	jitter float64
}

// NewPredictiveModel returns the predictive-posterior specification with the
// given relative diagonal jitter.
func NewPredictiveModel(jitter float64) GenerativeModel {
	return &predictiveModel{jitter: jitter}
}

func (m *predictiveModel) Name() string { return "predictive" }

func (m *predictiveModel) Outputs() []string { return []string{"f_star"} }

func (m *predictiveModel) OutputDim(name string, p Payload) (int, error) {
	if name != "f_star" {
		return 0, &ConfigurationError{Field: name, Reason: "unknown output"}
	}

	return p.count("n_star")
}

func (m *predictiveModel) Validate(p Payload) error {
	n, err := p.count("n")
	if err != nil {
		return err
	}

	if n == 0 {
		return &ConfigurationError{Field: "n", Reason: "prediction needs at least one training point"}
	}

	if _, err := p.vector("x", n); err != nil {
		return err
	}

	if _, err := p.vector("f", n); err != nil {
		return err
	}

	if _, err := p.positiveScalar("alpha"); err != nil {
		return err
	}

	if _, err := p.positiveScalar("rho"); err != nil {
		return err
	}

	nStar, err := p.count("n_star")
	if err != nil {
		return err
	}

	if _, err := p.vector("x_star", nStar); err != nil {
		return err
	}

	return nil
}

func (m *predictiveModel) Generate(src rand.Source, p Payload) (map[string][]float64, error) {
	n, _ := p.count("n")
	nStar, _ := p.count("n_star")

	if nStar == 0 {
		return map[string][]float64{"f_star": {}}, nil
	}

	x, _ := p.vector("x", n)
	f, _ := p.vector("f", n)
	alpha, _ := p.scalar("alpha")
	rho, _ := p.scalar("rho")
	xStar, _ := p.vector("x_star", nStar)

	cond, err := conditionGP(x, f, xStar, alpha, rho, m.jitter)
	if err != nil {
		return nil, err
	}

	rng := rand.New(src)

	return map[string][]float64{
		"f_star": drawGaussian(cond.mean, &cond.chol, rng.NormFloat64),
	}, nil
}
