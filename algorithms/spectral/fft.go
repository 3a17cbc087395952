package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// FFT is the whole-signal complex transform bound to one signal.
// Bin k of a forward transform corresponds to k*sampleRate/N Hz.
type FFT struct {
	signal     []float64
	sampleRate int
	logger     logging.Logger
}

// NewFFT creates a new FFT calculator for signal sampled at sampleRate
func NewFFT(signal []float64, sampleRate int) *FFT {
	return &FFT{
		signal:     signal,
		sampleRate: sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component": "fft",
		}),
	}
}

// Variant reports Full
func (f *FFT) Variant() Variant {
	return Full
}

// SampleRate returns the bound sample rate
func (f *FFT) SampleRate() int {
	return f.sampleRate
}

// NumberOfSamples returns N, the bound signal length
func (f *FFT) NumberOfSamples() int {
	return len(f.signal)
}

// Resolution returns sampleRate/N in Hz per bin
func (f *FFT) Resolution() float64 {
	if len(f.signal) == 0 {
		return 0
	}
	return float64(f.sampleRate) / float64(len(f.signal))
}

// Forward computes the complex spectrum of x using mjibson/go-dsp.
// The output has len(x) bins and is not normalized.
func (f *FFT) Forward(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Inverse computes the inverse FFT and returns the real part only
func (f *FFT) Inverse(spectrum []complex128) []float64 {
	if len(spectrum) == 0 {
		return []float64{}
	}

	result := fft.IFFT(spectrum)
	realResult := make([]float64, len(result))
	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// FrequencyBins returns the N/2+1 non-negative bin frequencies
func (f *FFT) FrequencyBins() []float64 {
	return LinearBins(len(f.signal)/2+1, f.Resolution())
}

// BinsForInterval returns the bin frequencies produced by AggregateByBinInterval
func (f *FFT) BinsForInterval(intervalHz float64) []float64 {
	return IntervalBins(len(f.signal), f.Resolution(), intervalHz)
}

// AggregateByBinInterval averages magnitude over groups of native bins
// spanning intervalHz across the full N-bin spectrum.
func (f *FFT) AggregateByBinInterval(magnitude []float64, intervalHz float64) ([]float64, []float64) {
	return AggregateFullSpectrum(magnitude, f.sampleRate, len(f.signal), intervalHz)
}

// FindCharacteristicFrequencies aggregates magnitude and returns its top peaks
func (f *FFT) FindCharacteristicFrequencies(intervalHz float64, magnitude []float64, count int, minFrequency, maxFrequency float64) []Peak {
	bins, aggregated := f.AggregateByBinInterval(magnitude, intervalHz)
	return FindPeaks(bins, aggregated, count, minFrequency, maxFrequency)
}

// ReduceNoise removes the noise spectrum from the bound signal by grouped
// ratio scaling. Noise is tiled or truncated to N first. For each group of
// bins the summed magnitudes decide: a group whose noise sum reaches the
// signal sum is zeroed, otherwise every bin is scaled by 1-noise/signal.
// Bins left below opts.Threshold are zeroed afterwards.
func (f *FFT) ReduceNoise(noise []float64, opts SubtractionOptions) (*NoiseReduction, error) {
	n := len(f.signal)
	if n == 0 {
		return nil, common.EmptySignal("fft reduce noise")
	}

	noiseSpectrum := f.Forward(common.Resize(noise, n))
	cleaned := f.Forward(f.signal)

	width := BinWidth(opts.BinIntervalHz, f.Resolution())
	zeroedGroups := 0

	for start := 0; start < n; start += width {
		end := min(start+width, n)

		signalSum, noiseSum := 0.0, 0.0
		for j := start; j < end; j++ {
			signalSum += cmplx.Abs(cleaned[j])
			noiseSum += cmplx.Abs(noiseSpectrum[j])
		}

		if noiseSum >= signalSum {
			zeroedGroups++
		}

		for j := start; j < end; j++ {
			if noiseSum >= signalSum {
				cleaned[j] = 0
			} else {
				cleaned[j] *= complex(1-noiseSum/signalSum, 0)
			}

			if cmplx.Abs(cleaned[j]) < opts.Threshold {
				cleaned[j] = 0
			}
		}
	}

	f.logger.Debug("Spectral subtraction applied", logging.Fields{
		"samples":       n,
		"bin_width":     width,
		"zeroed_groups": zeroedGroups,
	})

	return &NoiseReduction{
		Signal:   f.Inverse(cleaned),
		Spectrum: cleaned,
	}, nil
}

// AggregateFullSpectrum aggregates an N-bin full spectrum at resolution sampleRate/N
func AggregateFullSpectrum(magnitude []float64, sampleRate, numberOfSamples int, intervalHz float64) ([]float64, []float64) {
	resolution := 0.0
	if numberOfSamples > 0 {
		resolution = float64(sampleRate) / float64(numberOfSamples)
	}
	return AggregateByBinInterval(magnitude, numberOfSamples, resolution, intervalHz)
}
