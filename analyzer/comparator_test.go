package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/signal"
)

func tone(n, sampleRate int, frequency, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
	}
	return out
}

func newComparator(opts ...ComparatorOption) *Comparator {
	return NewComparator(append([]ComparatorOption{WithLogger(&logging.NoOpLogger{})}, opts...)...)
}

func TestCompareIsAsymmetric(t *testing.T) {
	a := signal.New(tone(800, 8000, 1000, 1), 8000)
	b := signal.New(tone(800, 8000, 2000, 0.5), 8000)
	c := newComparator()

	binsAB, diffAB, err := c.Compare(a, b, 100)
	require.NoError(t, err)
	_, diffBA, err := c.Compare(b, a, 100)
	require.NoError(t, err)

	require.Len(t, binsAB, 81)
	assert.Equal(t, 1000.0, binsAB[10])
	assert.NotEqual(t, diffAB, diffBA)

	assert.Greater(t, diffAB[10], 0.0)
	assert.Zero(t, diffBA[10])
	assert.Greater(t, diffBA[20], 0.0)
	assert.Zero(t, diffAB[20])

	for i := range diffAB {
		assert.GreaterOrEqual(t, diffAB[i], 0.0)
		assert.GreaterOrEqual(t, diffBA[i], 0.0)
	}
}

func TestCompareSampleRateMismatch(t *testing.T) {
	a := signal.New(make([]float64, 64), 44100)
	b := signal.New(make([]float64, 64), 48000)

	_, _, err := newComparator().Compare(a, b, 100)
	assert.ErrorIs(t, err, common.ErrDimensionMismatch)

	_, err = newComparator().CompareWithBaseline(a, b, 100)
	assert.ErrorIs(t, err, common.ErrDimensionMismatch)
}

func TestCompareLengthMismatch(t *testing.T) {
	a := signal.New(make([]float64, 64), 8000)
	b := signal.New(make([]float64, 65), 8000)

	_, _, err := newComparator().Compare(a, b, 100)
	assert.ErrorIs(t, err, common.ErrDimensionMismatch)
}

func TestCompareInvalidInput(t *testing.T) {
	a := signal.New(make([]float64, 8), 8000)

	_, _, err := newComparator().Compare(a, a, -1)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	empty := signal.New(nil, 8000)
	_, _, err = newComparator().Compare(empty, empty, 10)
	assert.ErrorIs(t, err, common.ErrEmptySignal)
}

func TestCompareCharacteristicFrequencies(t *testing.T) {
	target := make([]float64, 800)
	for i, v := range tone(800, 8000, 1000, 1) {
		target[i] = v + 0.25*math.Sin(2*math.Pi*3000*float64(i)/8000)
	}
	a := signal.New(target, 8000)
	b := signal.New(make([]float64, 800), 8000)

	peaks, err := newComparator().CompareCharacteristicFrequencies(a, b, 100, 2, 0, 4000)
	require.NoError(t, err)

	require.Len(t, peaks, 2)
	assert.Equal(t, 1000.0, peaks[0].Frequency)
	assert.Equal(t, 3000.0, peaks[1].Frequency)
	assert.Greater(t, peaks[0].Magnitude, peaks[1].Magnitude)
}

func TestCompareRealVariant(t *testing.T) {
	a := signal.New(tone(801, 8000, 1000, 1), 8000)
	b := signal.New(make([]float64, 801), 8000)
	c := newComparator(WithVariant(spectral.RealOptimized))

	comparison, err := c.CompareWithBaseline(a, b, 0)
	require.NoError(t, err)

	assert.Equal(t, "real", comparison.Variant)
	assert.Len(t, comparison.Bins, 401+1)
	assert.Equal(t, spectral.RealOptimized, c.Variant())

	peaks := c.CharacteristicFrequencies(comparison.Bins, comparison.MagnitudeDiff, 1, 0, math.MaxFloat64)
	// the tone sits at native half-spectrum bin 100
	require.Len(t, peaks, 1)
	assert.Equal(t, comparison.Bins[100], peaks[0].Frequency)
}
