package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammingSymmetricCoefficients(t *testing.T) {
	h := NewHamming(5, true)
	coeffs := h.GetCoefficients()
	require.Len(t, coeffs, 5)

	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
	assert.InDelta(t, 0.54, coeffs[1], 1e-12)
	assert.InDelta(t, 1.0, coeffs[2], 1e-12)
	assert.InDelta(t, coeffs[1], coeffs[3], 1e-12)
	assert.InDelta(t, coeffs[0], coeffs[4], 1e-12)
}

func TestHammingPeriodicDiffersFromSymmetric(t *testing.T) {
	periodic := NewHamming(8, false).GetCoefficients()
	expected := 0.54 - 0.46*math.Cos(2*math.Pi*3/8)
	assert.InDelta(t, expected, periodic[3], 1e-12)
}

func TestHammingSinglePoint(t *testing.T) {
	h := NewHamming(1, true)
	assert.Equal(t, []float64{1}, h.GetCoefficients())
}

func TestHammingApply(t *testing.T) {
	h := NewHamming(3, true)
	signal := []float64{2, 2, 2}

	windowed := h.Apply(signal)
	assert.InDeltaSlice(t, []float64{0.16, 2, 0.16}, windowed, 1e-12)
	assert.Equal(t, []float64{2, 2, 2}, signal)

	require.NoError(t, h.ApplyInPlace(signal))
	assert.InDeltaSlice(t, windowed, signal, 1e-12)

	assert.Nil(t, h.Apply([]float64{1}))
	assert.Error(t, h.ApplyInPlace([]float64{1}))
}
