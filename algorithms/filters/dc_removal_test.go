package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

func TestNewDCRemovalValidation(t *testing.T) {
	_, err := NewDCRemoval(0, 5)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewDCRemoval(44100, 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewDCRemoval(44100, math.NaN())
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestDCRemovalPole(t *testing.T) {
	dc, err := NewDCRemoval(44100, 5)
	require.NoError(t, err)

	assert.InDelta(t, 1-2*math.Pi*5/44100, dc.PoleLocation(), 1e-12)
	assert.InDelta(t, 5, dc.CutoffFrequency(44100), 1e-9)
	assert.Zero(t, dc.CutoffFrequency(0))

	dc, err = NewDCRemoval(48000, 2)
	require.NoError(t, err)
	assert.Greater(t, dc.PoleLocation(), 0.999)
	assert.InDelta(t, 2, dc.CutoffFrequency(48000), 1e-9)

	// a cutoff above fs/2pi drives the pole below zero
	dc, err = NewDCRemoval(100, 50)
	require.NoError(t, err)
	assert.Equal(t, 0.001, dc.PoleLocation())
}

func TestDCRemovalRemovesOffset(t *testing.T) {
	dc, err := NewDCRemoval(1000, 5)
	require.NoError(t, err)

	signal := make([]float64, 5000)
	for i := range signal {
		signal[i] = 0.5 + 0.1*math.Sin(2*math.Pi*100*float64(i)/1000)
	}

	out := dc.ProcessBuffer(signal)
	require.Len(t, out, len(signal))

	tail := out[len(out)-1000:]
	assert.InDelta(t, 0, common.Mean(tail), 1e-3)
	assert.InDelta(t, 0.1/math.Sqrt2, common.RMS(tail), 5e-3)
}

func TestDCRemovalProcessBufferResets(t *testing.T) {
	dc, err := NewDCRemoval(1000, 5)
	require.NoError(t, err)

	signal := []float64{1, 1, 1, 1}
	first := dc.ProcessBuffer(signal)
	second := dc.ProcessBuffer(signal)

	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, first[0])
}
