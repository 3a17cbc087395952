package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// RealFFT is the half-spectrum transform for real input, backed by
// gonum's real FFT. Forward output has N/2+1 bins and the bin spacing is
// sampleRate/(2*(N-1)).
type RealFFT struct {
	signal     []float64
	sampleRate int
	logger     logging.Logger
}

// NewRealFFT creates a new real FFT calculator for signal sampled at sampleRate
func NewRealFFT(signal []float64, sampleRate int) *RealFFT {
	return &RealFFT{
		signal:     signal,
		sampleRate: sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component": "rfft",
		}),
	}
}

// Variant reports RealOptimized
func (r *RealFFT) Variant() Variant {
	return RealOptimized
}

// SampleRate returns the bound sample rate
func (r *RealFFT) SampleRate() int {
	return r.sampleRate
}

// NumberOfSamples returns N, the bound signal length
func (r *RealFFT) NumberOfSamples() int {
	return len(r.signal)
}

// BinCount returns N/2+1
func (r *RealFFT) BinCount() int {
	return len(r.signal)/2 + 1
}

// Resolution returns sampleRate/(2*(N-1)). Signals shorter than two samples
// have no resolvable spacing and report 0.
func (r *RealFFT) Resolution() float64 {
	n := len(r.signal)
	if n < 2 {
		return 0
	}
	return float64(r.sampleRate) / (2 * float64(n-1))
}

// Forward computes the N/2+1 unnormalized coefficients of x
func (r *RealFFT) Forward(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fourier.NewFFT(len(x)).Coefficients(nil, x)
}

// Inverse rebuilds the bound-length real signal from half-spectrum
// coefficients. A spectrum that does not match the bound signal is treated
// as belonging to an even-length signal of 2*(len-1) samples.
func (r *RealFFT) Inverse(spectrum []complex128) []float64 {
	if len(spectrum) == 0 {
		return []float64{}
	}

	n := len(r.signal)
	if n == 0 || n/2+1 != len(spectrum) {
		n = max(2*(len(spectrum)-1), 1)
	}

	sequence := fourier.NewFFT(n).Sequence(nil, spectrum)
	floats.Scale(1/float64(n), sequence)

	return sequence
}

// FrequencyBins returns the N/2+1 bin frequencies at the real-FFT resolution
func (r *RealFFT) FrequencyBins() []float64 {
	return LinearBins(r.BinCount(), r.Resolution())
}

// BinsForInterval returns the bin frequencies produced by AggregateByBinInterval
func (r *RealFFT) BinsForInterval(intervalHz float64) []float64 {
	return IntervalBins(r.BinCount(), r.Resolution(), intervalHz)
}

// AggregateByBinInterval averages magnitude over groups of half-spectrum
// bins spanning intervalHz.
func (r *RealFFT) AggregateByBinInterval(magnitude []float64, intervalHz float64) ([]float64, []float64) {
	return AggregateByBinInterval(magnitude, r.BinCount(), r.Resolution(), intervalHz)
}

// FindCharacteristicFrequencies aggregates magnitude and returns its top peaks
func (r *RealFFT) FindCharacteristicFrequencies(intervalHz float64, magnitude []float64, count int, minFrequency, maxFrequency float64) []Peak {
	bins, aggregated := r.AggregateByBinInterval(magnitude, intervalHz)
	return FindPeaks(bins, aggregated, count, minFrequency, maxFrequency)
}

// ReduceNoise applies per-bin ratio scaling. The half spectrum is already
// compact, so opts.BinIntervalHz is ignored.
func (r *RealFFT) ReduceNoise(noise []float64, opts SubtractionOptions) (*NoiseReduction, error) {
	n := len(r.signal)
	if n == 0 {
		return nil, common.EmptySignal("rfft reduce noise")
	}

	noiseSpectrum := r.Forward(common.Resize(noise, n))
	cleaned := r.Forward(r.signal)
	zeroed := 0

	for i := range cleaned {
		signalMagnitude := cmplx.Abs(cleaned[i])
		noiseMagnitude := cmplx.Abs(noiseSpectrum[i])

		if noiseMagnitude >= signalMagnitude {
			cleaned[i] = 0
		} else {
			cleaned[i] *= complex(1-noiseMagnitude/signalMagnitude, 0)
		}

		if cmplx.Abs(cleaned[i]) < opts.Threshold {
			cleaned[i] = 0
		}
		if cleaned[i] == 0 {
			zeroed++
		}
	}

	r.logger.Debug("Real spectral subtraction applied", logging.Fields{
		"samples":     n,
		"bins":        len(cleaned),
		"zeroed_bins": zeroed,
	})

	return &NoiseReduction{
		Signal:   r.Inverse(cleaned),
		Spectrum: cleaned,
	}, nil
}
