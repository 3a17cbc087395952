package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

func sine(n int, frequency, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * frequency * float64(i) / sampleRate)
	}
	return out
}

func TestFFTRoundTrip(t *testing.T) {
	signals := [][]float64{
		{3.5},
		{1, -2},
		{1, 2, 3, 4, 5},
		sine(64, 440, 8000),
	}

	for _, signal := range signals {
		f := NewFFT(signal, 8000)
		restored := f.Inverse(f.Forward(signal))
		require.Len(t, restored, len(signal))
		assert.InDeltaSlice(t, signal, restored, 1e-9)
	}
}

func TestFFTEmpty(t *testing.T) {
	f := NewFFT(nil, 8000)

	assert.Empty(t, f.Forward(nil))
	assert.Empty(t, f.Inverse(nil))
	assert.Zero(t, f.Resolution())

	_, err := f.ReduceNoise([]float64{1}, DefaultSubtractionOptions())
	assert.ErrorIs(t, err, common.ErrEmptySignal)
}

func TestFFTBinsForInterval(t *testing.T) {
	f := NewFFT(make([]float64, 8), 8000)

	assert.Equal(t, 1000.0, f.Resolution())
	assert.Equal(t, []float64{0, 2000, 4000, 6000, 0}, f.BinsForInterval(2000))
	assert.Equal(t, []float64{0, 1000, 2000, 3000, 4000}, f.FrequencyBins())
}

func TestFFTCharacteristicFrequency(t *testing.T) {
	signal := sine(800, 1000, 8000)
	f := NewFFT(signal, 8000)

	magnitude := common.Magnitude(f.Forward(signal))
	peaks := f.FindCharacteristicFrequencies(0, magnitude, 1, 0, 4000)

	require.Len(t, peaks, 1)
	assert.InDelta(t, 1000, peaks[0].Frequency, 1e-9)
}

func TestFFTReduceNoiseIdenticalNoise(t *testing.T) {
	signal := []float64{1, 3, -2, 0.5, 4, -1, 2, 0}
	f := NewFFT(signal, 8)

	result, err := f.ReduceNoise(signal, DefaultSubtractionOptions())
	require.NoError(t, err)

	assert.InDeltaSlice(t, make([]float64, len(signal)), result.Signal, 1e-12)
	for _, c := range result.Spectrum {
		assert.Zero(t, c)
	}
}

func TestFFTReduceNoiseSilentNoise(t *testing.T) {
	signal := []float64{1, 3, -2, 0.5, 4, -1, 2, 0.25}
	f := NewFFT(signal, 8)

	result, err := f.ReduceNoise(make([]float64, 3), DefaultSubtractionOptions())
	require.NoError(t, err)

	assert.InDeltaSlice(t, signal, result.Signal, 1e-9)
}

func TestFFTReduceNoiseTilesShortNoise(t *testing.T) {
	period := []float64{1, -1, 2, 0.5}
	signal := append(common.Copy(period), period...)
	f := NewFFT(signal, 8)

	result, err := f.ReduceNoise(period, SubtractionOptions{BinIntervalHz: 2, Threshold: DefaultSubtractionThreshold})
	require.NoError(t, err)

	assert.InDeltaSlice(t, make([]float64, len(signal)), result.Signal, 1e-12)
}

func TestFFTReduceNoiseScalesGroup(t *testing.T) {
	signal := sine(64, 8, 64)
	noise := make([]float64, len(signal))
	for i := range noise {
		noise[i] = 0.25 * signal[i]
	}

	f := NewFFT(signal, 64)
	result, err := f.ReduceNoise(noise, DefaultSubtractionOptions())
	require.NoError(t, err)

	expected := make([]float64, len(signal))
	for i := range expected {
		expected[i] = 0.75 * signal[i]
	}
	assert.InDeltaSlice(t, expected, result.Signal, 1e-9)
}

func TestRealFFTRoundTrip(t *testing.T) {
	signals := [][]float64{
		{2},
		{1, 2, 3, 4, 5},
		{1, -1, 0.5, 2, 0, 3},
		sine(50, 300, 4000),
	}

	for _, signal := range signals {
		r := NewRealFFT(signal, 4000)
		spectrum := r.Forward(signal)
		require.Len(t, spectrum, len(signal)/2+1)

		restored := r.Inverse(spectrum)
		assert.InDeltaSlice(t, signal, restored, 1e-9)
	}
}

func TestRealFFTResolution(t *testing.T) {
	r := NewRealFFT(make([]float64, 5), 8000)

	assert.Equal(t, 1000.0, r.Resolution())
	assert.Equal(t, 3, r.BinCount())
	assert.Equal(t, []float64{0, 1000, 2000}, r.FrequencyBins())
	assert.Zero(t, NewRealFFT([]float64{1}, 8000).Resolution())
}

func TestRealFFTAggregation(t *testing.T) {
	r := NewRealFFT(make([]float64, 9), 8000)

	bins, aggregated := r.AggregateByBinInterval([]float64{1, 3, 5, 7, 9}, 1000)

	assert.Equal(t, 500.0, r.Resolution())
	assert.Equal(t, []float64{0, 1000, 2000}, bins)
	assert.Equal(t, []float64{2, 6, 9}, aggregated)
	assert.Equal(t, bins, r.BinsForInterval(1000))
}

func TestRealFFTReduceNoise(t *testing.T) {
	signal := sine(32, 4, 32)

	r := NewRealFFT(signal, 32)
	result, err := r.ReduceNoise(signal, DefaultSubtractionOptions())
	require.NoError(t, err)
	assert.InDeltaSlice(t, make([]float64, len(signal)), result.Signal, 1e-12)

	result, err = r.ReduceNoise(nil, DefaultSubtractionOptions())
	require.NoError(t, err)
	assert.InDeltaSlice(t, signal, result.Signal, 1e-9)
}

func TestNewTransform(t *testing.T) {
	full, err := NewTransform(Full, make([]float64, 8), 8000)
	require.NoError(t, err)
	assert.Equal(t, Full, full.Variant())
	assert.Len(t, full.Forward(make([]float64, 8)), 8)

	half, err := NewTransform(RealOptimized, make([]float64, 8), 8000)
	require.NoError(t, err)
	assert.Equal(t, RealOptimized, half.Variant())
	assert.Len(t, half.Forward(make([]float64, 8)), 5)

	_, err = NewTransform(Full, nil, 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewTransform(Variant(7), nil, 8000)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("Real")
	require.NoError(t, err)
	assert.Equal(t, RealOptimized, v)

	v, err = ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, Full, v)

	_, err = ParseVariant("wavelet")
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}
