package gpc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//////
// Squared-exponential covariance.
//////

// sqExpCov evaluates the squared-exponential (RBF) covariance between two
// scalar inputs.
//
// Mathematical formula:
//
//	k(xa, xb) = alpha^2 * exp(-0.5 * (xa - xb)^2 / rho^2)
//
// alpha is the marginal standard deviation (amplitude) and rho the length
// scale. Both must be positive; callers validate before reaching this point.
func sqExpCov(alpha, rho, xa, xb float64) float64 {
	d := (xa - xb) / rho

	return alpha * alpha * math.Exp(-0.5*d*d)
}

// covarianceMatrix builds the square covariance matrix K(x, x) for the
// squared-exponential kernel, with a small diagonal jitter added for
// numerical positive-definiteness.
//
// Parameters:
// - x: Input locations
// - alpha: Marginal standard deviation of the process
// - rho: Length scale
// - jitter: Relative diagonal jitter; jitter*alpha^2 is added to the diagonal
//
// Returns:
// - *mat.SymDense: Symmetric positive-definite covariance matrix
//
// Important notes:
// - Deterministic given (x, alpha, rho, jitter)
// - The jitter scales with the marginal variance so it stays meaningful
//   across amplitude regimes
// - Diagonal entries equal alpha^2 + jitter*alpha^2.
func covarianceMatrix(x []float64, alpha, rho, jitter float64) *mat.SymDense {
	n := len(x)
	k := mat.NewSymDense(n, nil)

	diag := alpha * alpha * (1 + jitter)

	for i := 0; i < n; i++ {
		k.SetSym(i, i, diag)

		for j := i + 1; j < n; j++ {
			k.SetSym(i, j, sqExpCov(alpha, rho, x[i], x[j]))
		}
	}

	return k
}

// crossCovariance builds the rectangular cross-covariance matrix K(xa, xb)
// for the squared-exponential kernel. No jitter is added: jitter only applies
// to diagonal blocks of square covariance matrices.
func crossCovariance(xa, xb []float64, alpha, rho float64) *mat.Dense {
	k := mat.NewDense(len(xa), len(xb), nil)

	for i := range xa {
		for j := range xb {
			k.Set(i, j, sqExpCov(alpha, rho, xa[i], xb[j]))
		}
	}

	return k
}

//////
// Gaussian density helpers.
//////

// gaussianLogDensity evaluates the log density of a zero-mean multivariate
// Gaussian with covariance factored by chol, at the point f.
//
// Uses the Cholesky factor for both the quadratic form (by triangular solve)
// and the log determinant; the covariance is never inverted explicitly.
func gaussianLogDensity(f *mat.VecDense, chol *mat.Cholesky) (float64, error) {
	n := f.Len()
	if n == 0 {
		return 0, nil
	}

	v := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(v, f); err != nil {
		return 0, err
	}

	quad := mat.Dot(f, v)

	return -0.5 * (quad + chol.LogDet() + float64(n)*math.Log(2*math.Pi)), nil
}

// drawGaussian draws mean + L*z where L is the lower Cholesky factor held by
// chol and z is standard-normal noise from normFn. A nil mean is treated as
// zero.
func drawGaussian(mean *mat.VecDense, chol *mat.Cholesky, normFn func() float64) []float64 {
	n := chol.SymmetricDim()

	var l mat.TriDense

	chol.LTo(&l)

	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, normFn())
	}

	out := mat.NewVecDense(n, nil)
	out.MulVec(&l, z)

	if mean != nil {
		out.AddVec(out, mean)
	}

	return out.RawVector().Data
}
