package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
)

func tone(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / 8)
	}
	return out
}

func TestNewCopiesInput(t *testing.T) {
	samples := []float64{1, 2, 3}
	d := New(samples, 8000)

	samples[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, d.TimeDomainSignal())
	assert.Equal(t, []float64{1, 2, 3}, d.DecimalSignal)
	assert.Equal(t, DefaultWindowSize, d.WindowSize())
	assert.Equal(t, DefaultHopSize, d.HopSize())
}

func TestDerivedViewsAreMemoized(t *testing.T) {
	d := New(tone(16), 16)

	first := d.FrequencyDomainSignal()
	second := d.FrequencyDomainSignal()
	assert.Same(t, &first[0], &second[0])

	mag := d.Magnitude()
	assert.Same(t, &mag[0], &d.Magnitude()[0])
	assert.Same(t, d.FFT(), d.FFT())
}

func TestSetTimeDomainSignalInvalidatesEverything(t *testing.T) {
	d := New(tone(16), 16)
	require.NoError(t, d.SetWindow(8, 4))

	oldSpectrum := d.FrequencyDomainSignal()
	oldMagnitude := d.Magnitude()
	oldFFT := d.FFT()
	oldSTFT, err := d.STFT()
	require.NoError(t, err)
	_, err = d.STFTAverageMagnitude()
	require.NoError(t, err)

	d.SetTimeDomainSignal(make([]float64, 32))

	assert.Len(t, d.FrequencyDomainSignal(), 32)
	assert.NotEqual(t, len(oldSpectrum), len(d.FrequencyDomainSignal()))
	assert.NotEqual(t, oldMagnitude, d.Magnitude())
	assert.NotSame(t, oldFFT, d.FFT())
	assert.Equal(t, 32, d.FFT().NumberOfSamples())

	newSTFT, err := d.STFT()
	require.NoError(t, err)
	assert.NotSame(t, oldSTFT, newSTFT)
	assert.Equal(t, 7, newSTFT.FrameCount())

	average, err := d.STFTAverageMagnitude()
	require.NoError(t, err)
	for _, v := range average {
		assert.Zero(t, v)
	}
}

func TestSetWindowRebindsSTFT(t *testing.T) {
	d := New(tone(64), 64)
	require.NoError(t, d.SetWindow(16, 8))

	stft, err := d.STFT()
	require.NoError(t, err)
	assert.Equal(t, 7, stft.FrameCount())

	require.NoError(t, d.SetWindow(32, 32))
	stft, err = d.STFT()
	require.NoError(t, err)
	assert.Equal(t, 2, stft.FrameCount())

	err = d.SetWindow(0, 8)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestSetSampleRateRebindsEngines(t *testing.T) {
	d := New(make([]float64, 8), 8000)
	require.NoError(t, d.SetWindow(4, 4))

	oldFFT := d.FFT()
	assert.Equal(t, []float64{0, 1000, 2000, 3000, 4000}, d.FrequencyBins())
	times, err := d.STFTTimeBins()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.0005}, times)

	require.NoError(t, d.SetSampleRate(16000))

	assert.NotSame(t, oldFFT, d.FFT())
	assert.Equal(t, 16000, d.FFT().SampleRate())
	assert.Equal(t, 16000, d.RealFFT().SampleRate())
	assert.Equal(t, []float64{0, 2000, 4000, 6000, 8000}, d.FrequencyBins())
	stft, err := d.STFT()
	require.NoError(t, err)
	assert.Equal(t, 16000, stft.SampleRate())
	times, err = d.STFTTimeBins()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.00025}, times)

	assert.ErrorIs(t, d.SetSampleRate(0), common.ErrInvalidConfiguration)
	assert.Equal(t, 16000, d.SampleRate)
}

func TestSTFTWindowLongerThanSignal(t *testing.T) {
	d := New(tone(100), 8000)

	_, err := d.STFTSpectrum()
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = d.STFTAverageMagnitude()
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestFrequencyBins(t *testing.T) {
	d := New(make([]float64, 8), 8000)

	assert.Equal(t, []float64{0, 1000, 2000, 3000, 4000}, d.FrequencyBins())
	assert.InDeltaSlice(t, []float64{0, 8000.0 / 14, 16000.0 / 14, 24000.0 / 14, 32000.0 / 14}, d.RealFrequencyBins(), 1e-9)
	assert.Len(t, d.RealFrequencyDomainSignal(), 5)
	assert.Len(t, d.RealMagnitude(), 5)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 8000, 2.0 / 8000}, d.TimeBins()[:3], 1e-15)
}

func TestAmplitudeViews(t *testing.T) {
	d := New([]float64{-0.5, 0.25, 0}, 4)

	assert.Equal(t, []float64{0.5, 0.25, 0}, d.Amplitude())
	assert.InDelta(t, 20*math.Log10(0.5), d.AmplitudeDB()[0], 1e-12)
	assert.True(t, math.IsInf(d.AmplitudeDB()[2], -1))
	assert.Equal(t, []float64{-1, 0.5, 0}, d.Normalized())
	assert.Len(t, d.MagnitudeDB(), 3)
}

func TestCloneAndWithSignal(t *testing.T) {
	d := New([]float64{1, 2, 3, 4}, 8000)
	d.Channels = 2
	d.SampleWidth = 2
	d.PulseWidth = 2
	d.PulseSampleIndices = []int{1}
	require.NoError(t, d.SetWindow(2, 1))

	clone := d.Clone()
	clone.PulseSampleIndices[0] = 5
	clone.TimeDomainSignal()[0] = 42

	assert.Equal(t, []int{1}, d.PulseSampleIndices)
	assert.Equal(t, 1.0, d.TimeDomainSignal()[0])
	assert.Equal(t, 2, clone.Channels)
	assert.Equal(t, 2, clone.WindowSize())

	derived := d.WithSignal([]float64{9, 9})
	assert.Equal(t, 2, derived.NumberOfSamples())
	assert.Empty(t, derived.PulseSampleIndices)
	assert.Equal(t, 2, derived.PulseWidth)
}

func TestTransformVariants(t *testing.T) {
	d := New(tone(16), 16)

	full, err := d.Transform(spectral.Full)
	require.NoError(t, err)
	assert.Same(t, d.FFT(), full)

	half, err := d.Transform(spectral.RealOptimized)
	require.NoError(t, err)
	assert.Same(t, d.RealFFT(), half)

	assert.Len(t, d.MagnitudeFor(spectral.Full), 16)
	assert.Len(t, d.MagnitudeFor(spectral.RealOptimized), 9)
}

func TestStats(t *testing.T) {
	d := New([]float64{1, -1, 1, -1}, 2)

	stats := d.Stats()
	assert.Equal(t, 4, stats.Samples)
	assert.Equal(t, 2.0, stats.Duration)
	assert.Equal(t, 0.0, stats.Mean)
	assert.Equal(t, 1.0, stats.RMS)
	assert.Equal(t, 1.0, stats.Peak)
}
