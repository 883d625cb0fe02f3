package gpc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// noisySampleSet builds chains of independent normal draws, optionally
// offsetting each chain's mean to fake non-convergence.
func noisySampleSet(chains, iterations int, offsetPerChain float64) *SampleSet {
	set := newSampleSet("test", []string{"x"}, map[string]int{"x": 1}, chains, iterations)

	rng := rand.New(rand.NewPCG(77, 0))

	for c := 0; c < chains; c++ {
		for it := 0; it < iterations; it++ {
			set.setDraw(c, it, map[string][]float64{
				"x": {rng.NormFloat64() + float64(c)*offsetPerChain},
			})
		}
	}

	return set
}

func TestPotentialScaleReductionMixed(t *testing.T) {
	// Independent draws from one distribution: R-hat sits at 1 up to
	// sampling noise.
	rhat, err := PotentialScaleReduction(noisySampleSet(4, 500, 0), "x")

	assert.NoError(t, err)
	assert.Len(t, rhat, 1)
	assert.InDelta(t, 1.0, rhat[0], 0.05)
}

func TestPotentialScaleReductionDiverged(t *testing.T) {
	// Chains centered 5 standard deviations apart cannot pass.
	rhat, err := PotentialScaleReduction(noisySampleSet(4, 500, 5), "x")

	assert.NoError(t, err)
	assert.Greater(t, rhat[0], 1.5)
}

func TestEffectiveSampleSizeIndependent(t *testing.T) {
	set := noisySampleSet(4, 500, 0)

	ess, err := EffectiveSampleSize(set, "x")

	assert.NoError(t, err)
	assert.Len(t, ess, 1)

	// Independent draws are worth close to their nominal count; the
	// autocorrelation estimator only loses a little to noise.
	assert.Greater(t, ess[0], 500.0)
	assert.LessOrEqual(t, ess[0], 2000.0)
}

func TestEffectiveSampleSizeCorrelated(t *testing.T) {
	// A strongly autocorrelated chain is worth far fewer draws.
	set := newSampleSet("test", []string{"x"}, map[string]int{"x": 1}, 2, 500)

	rng := rand.New(rand.NewPCG(78, 0))

	for c := 0; c < 2; c++ {
		v := 0.0
		for it := 0; it < 500; it++ {
			v = 0.95*v + rng.NormFloat64()

			set.setDraw(c, it, map[string][]float64{"x": {v}})
		}
	}

	iid := noisySampleSet(2, 500, 0)

	essCorrelated, err := EffectiveSampleSize(set, "x")
	assert.NoError(t, err)

	essIID, err := EffectiveSampleSize(iid, "x")
	assert.NoError(t, err)

	assert.Less(t, essCorrelated[0], essIID[0]/2)
}

func TestDiagnosticsValidation(t *testing.T) {
	var confErr *ConfigurationError

	_, err := PotentialScaleReduction(nil, "x")
	assert.ErrorAs(t, err, &confErr)

	_, err = EffectiveSampleSize(nil, "x")
	assert.ErrorAs(t, err, &confErr)

	short := noisySampleSet(2, 3, 0)

	_, err = PotentialScaleReduction(short, "x")
	assert.ErrorAs(t, err, &confErr)

	set := noisySampleSet(2, 100, 0)

	_, err = PotentialScaleReduction(set, "missing")
	assert.ErrorAs(t, err, &confErr)
}
