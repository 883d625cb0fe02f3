package gpc

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSqExpCovLimits(t *testing.T) {
	const (
		alpha = 5.0
		rho   = 0.1
	)

	// At zero distance the covariance equals the marginal variance.
	assert.InDelta(t, alpha*alpha, sqExpCov(alpha, rho, 0.3, 0.3), 1e-12)

	// Covariance vanishes as the distance grows large relative to rho.
	assert.Less(t, sqExpCov(alpha, rho, -1, 1), 1e-12)

	// Monotone decay in distance.
	assert.Greater(t,
		sqExpCov(alpha, rho, 0, 0.05),
		sqExpCov(alpha, rho, 0, 0.1),
	)
}

func TestCovarianceMatrixSymmetricPSD(t *testing.T) {
	x := linspace(-1, 1, 20)

	k := covarianceMatrix(x, 2.0, 0.3, 1e-9)

	// Entries match the kernel formula, both orientations.
	for i := range x {
		for j := range x {
			if i == j {
				assert.InDelta(t, 4.0*(1+1e-9), k.At(i, i), 1e-12)
				continue
			}

			assert.InDelta(t, sqExpCov(2.0, 0.3, x[i], x[j]), k.At(i, j), 1e-12)
			assert.Equal(t, k.At(i, j), k.At(j, i))
		}
	}

	// All eigenvalues are non-negative up to round-off.
	var eig mat.EigenSym

	assert.True(t, eig.Factorize(k, false))

	for _, v := range eig.Values(nil) {
		assert.GreaterOrEqual(t, v, -1e-10)
	}
}

func TestCrossCovariance(t *testing.T) {
	xa := []float64{-0.5, 0, 0.5}
	xb := []float64{0, 1}

	k := crossCovariance(xa, xb, 1.5, 0.4)

	r, c := k.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)

	// Coincident points carry the full marginal variance: no jitter is ever
	// added to rectangular blocks.
	assert.InDelta(t, 1.5*1.5, k.At(1, 0), 1e-12)
}

func TestGaussianLogDensity(t *testing.T) {
	// One-dimensional case against the closed form.
	k := mat.NewSymDense(1, []float64{4})

	var chol mat.Cholesky

	assert.True(t, chol.Factorize(k))

	f := mat.NewVecDense(1, []float64{1.2})

	got, err := gaussianLogDensity(f, &chol)
	assert.NoError(t, err)

	want := -0.5 * (1.2*1.2/4 + math.Log(4) + math.Log(2*math.Pi))
	assert.InDelta(t, want, got, 1e-12)

	// Empty vector carries no density terms.
	got, err = gaussianLogDensity(&mat.VecDense{}, &mat.Cholesky{})
	assert.NoError(t, err)
	assert.Zero(t, got)
}

func TestDrawGaussianReproducible(t *testing.T) {
	x := linspace(-1, 1, 10)
	k := covarianceMatrix(x, 1.0, 0.5, 1e-9)

	var chol mat.Cholesky

	assert.True(t, chol.Factorize(k))

	draw := func() []float64 {
		rng := rand.New(rand.NewPCG(11, 0))
		return drawGaussian(nil, &chol, rng.NormFloat64)
	}

	first := draw()

	assert.Len(t, first, 10)
	assert.True(t, allFinite(first))
	assert.Equal(t, first, draw())
}
