package gpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadGetters(t *testing.T) {
	p := Payload{
		"n":     3,
		"x":     []float64{1, 2, 3},
		"alpha": 2.5,
	}

	n, err := p.count("n")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	x, err := p.vector("x", 3)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, x)

	alpha, err := p.positiveScalar("alpha")
	assert.NoError(t, err)
	assert.Equal(t, 2.5, alpha)

	var confErr *ConfigurationError

	_, err = p.count("missing")
	assert.ErrorAs(t, err, &confErr)

	_, err = p.vector("x", 4)
	assert.ErrorAs(t, err, &confErr)

	_, err = p.scalar("n")
	assert.ErrorAs(t, err, &confErr)
}

func TestPosteriorModelValidate(t *testing.T) {
	model := NewPosteriorModel(DefaultPriorConfig(), 1e-9)

	valid := Payload{
		"n": 2,
		"x": []float64{0, 1},
		"y": []float64{0, 1},
	}

	assert.NoError(t, model.Validate(valid))

	var confErr *ConfigurationError

	// Length mismatch between x and y.
	assert.ErrorAs(t, model.Validate(Payload{
		"n": 2,
		"x": []float64{0, 1},
		"y": []float64{0},
	}), &confErr)

	// Observations outside {0, 1}.
	assert.ErrorAs(t, model.Validate(Payload{
		"n": 2,
		"x": []float64{0, 1},
		"y": []float64{0, 0.5},
	}), &confErr)

	// No observations at all.
	assert.ErrorAs(t, model.Validate(Payload{
		"n": 0,
		"x": []float64{},
		"y": []float64{},
	}), &confErr)
}

func TestPosteriorModelLogDensity(t *testing.T) {
	model := NewPosteriorModel(DefaultPriorConfig(), 1e-9)

	p := Payload{
		"n": 3,
		"x": []float64{-0.5, 0, 0.5},
		"y": []float64{1, 0, 1},
	}

	dim, err := model.Dimension(p)
	assert.NoError(t, err)
	assert.Equal(t, 5, dim)

	theta := []float64{0.1, -0.8, 0.3, -0.2, 0.5}

	lp, err := model.LogDensity(theta, p)
	assert.NoError(t, err)
	assert.False(t, math.IsNaN(lp))
	assert.False(t, math.IsInf(lp, 0))

	// Flipping an observed label against its latent sign lowers the density.
	flipped := Payload{
		"n": 3,
		"x": []float64{-0.5, 0, 0.5},
		"y": []float64{0, 0, 1},
	}

	lpFlipped, err := model.LogDensity(theta, flipped)
	assert.NoError(t, err)
	assert.Less(t, lpFlipped, lp)

	// Absurd log-scale proposals are rejected, not evaluated.
	lp, err = model.LogDensity([]float64{40, 0, 0, 0, 0}, p)
	assert.NoError(t, err)
	assert.True(t, math.IsInf(lp, -1))
}

func TestPosteriorModelTransform(t *testing.T) {
	model := NewPosteriorModel(DefaultPriorConfig(), 1e-9)

	p := Payload{
		"n": 2,
		"x": []float64{0, 1},
		"y": []float64{1, 0},
	}

	out := map[string][]float64{
		"alpha": make([]float64, 1),
		"rho":   make([]float64, 1),
		"f":     make([]float64, 2),
	}

	err := model.Transform([]float64{math.Log(2), math.Log(0.5), 0.7, -0.3}, p, out)

	assert.NoError(t, err)
	assert.InDelta(t, 2.0, out["alpha"][0], 1e-12)
	assert.InDelta(t, 0.5, out["rho"][0], 1e-12)
	assert.Equal(t, []float64{0.7, -0.3}, out["f"])
}

func TestGenerationModelValidate(t *testing.T) {
	model := NewGenerationModel(1e-9)

	var confErr *ConfigurationError

	assert.ErrorAs(t, model.Validate(Payload{
		"n":     2,
		"x":     []float64{0, 1},
		"alpha": -1.0,
		"rho":   0.5,
	}), &confErr)

	assert.NoError(t, model.Validate(Payload{
		"n":     2,
		"x":     []float64{0, 1},
		"alpha": 1.0,
		"rho":   0.5,
	}))
}

func TestPredictiveModelValidate(t *testing.T) {
	model := NewPredictiveModel(1e-9)

	valid := Payload{
		"n":      2,
		"x":      []float64{0, 1},
		"f":      []float64{0.5, -0.5},
		"alpha":  1.0,
		"rho":    0.5,
		"n_star": 3,
		"x_star": []float64{0, 0.5, 1},
	}

	assert.NoError(t, model.Validate(valid))

	var confErr *ConfigurationError

	invalid := Payload{
		"n":      2,
		"x":      []float64{0, 1},
		"f":      []float64{0.5},
		"alpha":  1.0,
		"rho":    0.5,
		"n_star": 3,
		"x_star": []float64{0, 0.5, 1},
	}

	assert.ErrorAs(t, model.Validate(invalid), &confErr)
}
