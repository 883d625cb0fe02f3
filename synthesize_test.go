package gpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSynthesisConfig(n int, seed uint64) SynthesisConfig {
	return SynthesisConfig{
		GridSize: n,
		GridMin:  -1,
		GridMax:  1,
		Alpha:    5,
		Rho:      0.1,
		Jitter:   1e-9,
		Seed:     seed,
	}
}

func TestSynthesizeShapes(t *testing.T) {
	data, err := Synthesize(testSynthesisConfig(50, 3))

	assert.NoError(t, err)
	assert.Len(t, data.Grid, 50)
	assert.Len(t, data.Latent, 50)
	assert.Len(t, data.Labels, 50)

	// Grid is strictly increasing and spans the requested bounds.
	assert.Equal(t, -1.0, data.Grid[0])
	assert.Equal(t, 1.0, data.Grid[49])

	for i := 1; i < 50; i++ {
		assert.Greater(t, data.Grid[i], data.Grid[i-1])
	}

	assert.True(t, allFinite(data.Latent))

	for _, y := range data.Labels {
		assert.Contains(t, []float64{0, 1}, y)
	}
}

func TestSynthesizeReproducible(t *testing.T) {
	first, err := Synthesize(testSynthesisConfig(40, 123))
	assert.NoError(t, err)

	second, err := Synthesize(testSynthesisConfig(40, 123))
	assert.NoError(t, err)

	assert.Equal(t, first.Latent, second.Latent)
	assert.Equal(t, first.Labels, second.Labels)

	// A different seed produces a different draw.
	third, err := Synthesize(testSynthesisConfig(40, 124))
	assert.NoError(t, err)
	assert.NotEqual(t, first.Latent, third.Latent)
}

func TestSynthesizeEmptyGrid(t *testing.T) {
	data, err := Synthesize(testSynthesisConfig(0, 1))

	assert.NoError(t, err)
	assert.Empty(t, data.Grid)
	assert.Empty(t, data.Latent)
	assert.Empty(t, data.Labels)
}

func TestSynthesizeInvalidConfig(t *testing.T) {
	var confErr *ConfigurationError

	cfg := testSynthesisConfig(10, 1)
	cfg.Alpha = 0

	_, err := Synthesize(cfg)
	assert.ErrorAs(t, err, &confErr)

	cfg = testSynthesisConfig(10, 1)
	cfg.Rho = -0.5

	_, err = Synthesize(cfg)
	assert.ErrorAs(t, err, &confErr)

	cfg = testSynthesisConfig(10, 1)
	cfg.GridMin, cfg.GridMax = 1, -1

	_, err = Synthesize(cfg)
	assert.ErrorAs(t, err, &confErr)
}

func TestSubsampleInvariants(t *testing.T) {
	data, err := Synthesize(testSynthesisConfig(30, 9))
	assert.NoError(t, err)

	train, err := data.Subsample(10, 21)
	assert.NoError(t, err)

	assert.Len(t, train.X, 10)
	assert.Len(t, train.Y, 10)

	// Sorted indices over a strictly increasing grid give strictly
	// increasing inputs; equality would mean a duplicated index.
	for i := 1; i < len(train.X); i++ {
		assert.Greater(t, train.X[i], train.X[i-1])
	}

	// Every pair came from the parent dataset.
	lookup := make(map[float64]float64, len(data.Grid))
	for i, x := range data.Grid {
		lookup[x] = data.Labels[i]
	}

	for i, x := range train.X {
		y, ok := lookup[x]

		assert.True(t, ok)
		assert.Equal(t, y, train.Y[i])
	}
}

func TestSubsampleReproducible(t *testing.T) {
	data, err := Synthesize(testSynthesisConfig(30, 9))
	assert.NoError(t, err)

	first, err := data.Subsample(12, 5)
	assert.NoError(t, err)

	second, err := data.Subsample(12, 5)
	assert.NoError(t, err)

	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Y, second.Y)
}

func TestSubsampleTooLarge(t *testing.T) {
	data, err := Synthesize(testSynthesisConfig(20, 9))
	assert.NoError(t, err)

	var confErr *ConfigurationError

	_, err = data.Subsample(21, 5)
	assert.ErrorAs(t, err, &confErr)

	_, err = data.Subsample(-1, 5)
	assert.ErrorAs(t, err, &confErr)
}

func TestNewDataset(t *testing.T) {
	ds, err := NewDataset([]float64{-1, 0, 1}, []int{0, 1, 1})

	assert.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, ds.X)
	assert.Equal(t, []float64{0, 1, 1}, ds.Y)

	var confErr *ConfigurationError

	_, err = NewDataset([]float64{-1, 0}, []int{0})
	assert.ErrorAs(t, err, &confErr)

	_, err = NewDataset([]float64{-1, 0}, []int{0, 2})
	assert.ErrorAs(t, err, &confErr)
}
