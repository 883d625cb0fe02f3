package gpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogisticRange(t *testing.T) {
	assert.Equal(t, 0.5, Logistic(0))

	for _, f := range []float64{-700, -35, -3, -0.1, 0.1, 3, 35, 700} {
		p := Logistic(f)

		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	// Strictly inside (0, 1) away from float limits.
	assert.Greater(t, Logistic(-30), 0.0)
	assert.Less(t, Logistic(30), 1.0)
}

func TestLogisticMonotone(t *testing.T) {
	prev := Logistic(-10)

	for f := -9.5; f <= 10; f += 0.5 {
		cur := Logistic(f)

		assert.Greater(t, cur, prev)

		prev = cur
	}
}

func TestLogisticSymmetry(t *testing.T) {
	for _, f := range []float64{0.3, 1.7, 8} {
		assert.InDelta(t, 1, Logistic(f)+Logistic(-f), 1e-12)
	}
}

func TestBernoulliLogProb(t *testing.T) {
	// Matches the naive form where it is numerically safe.
	for _, f := range []float64{-4, -1, 0, 2, 5} {
		assert.InDelta(t, math.Log(Logistic(f)), bernoulliLogProb(1, f), 1e-10)
		assert.InDelta(t, math.Log(1-Logistic(f)), bernoulliLogProb(0, f), 1e-10)
	}

	// Stays finite where the naive form would round to log(0).
	assert.True(t, !math.IsInf(bernoulliLogProb(1, -800), 0))
	assert.True(t, !math.IsInf(bernoulliLogProb(0, 800), 0))
}
