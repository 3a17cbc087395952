// Package signal holds a time-domain signal together with its lazily
// derived spectral views.
package signal

import (
	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// Default STFT geometry
const (
	DefaultWindowSize = 4096
	DefaultHopSize    = 2048
)

// Data owns one time-domain signal and its audio metadata. Every derived
// view is computed on first access and memoized; replacing the signal or
// the STFT geometry drops all of them at once.
//
// Slices returned by accessors are shared with the cache and must not be
// modified. Data is not safe for concurrent use.
type Data struct {
	Channels    int
	SampleWidth int
	// SampleRate must not be assigned once a derived view has been read;
	// use SetSampleRate, which drops the views bound to the old rate.
	SampleRate int
	RawBytes   []byte

	// DecimalSignal is the decoded signal as read from disk
	DecimalSignal []float64

	PulseWidth             int
	PulseSampleIndices     []int
	NoiseDropSampleIndices []int

	timeDomain []float64
	windowSize int
	hopSize    int

	cache  *cache
	logger logging.Logger
}

// New creates Data for samples recorded at sampleRate. samples is copied.
func New(samples []float64, sampleRate int) *Data {
	d := &Data{
		Channels:      1,
		SampleRate:    sampleRate,
		DecimalSignal: common.Copy(samples),
		timeDomain:    common.Copy(samples),
		windowSize:    DefaultWindowSize,
		hopSize:       DefaultHopSize,
		cache:         &cache{},
		logger: logging.WithFields(logging.Fields{
			"component": "signal_data",
		}),
	}
	return d
}

// SetLogger replaces the logger used for cache diagnostics
func (d *Data) SetLogger(logger logging.Logger) {
	d.logger = logging.OrGlobal(logger)
}

// TimeDomainSignal returns the current signal
func (d *Data) TimeDomainSignal() []float64 {
	return d.timeDomain
}

// SetTimeDomainSignal replaces the signal with a copy of samples and
// invalidates every derived view.
func (d *Data) SetTimeDomainSignal(samples []float64) {
	d.timeDomain = common.Copy(samples)
	d.invalidate()
}

// SetSampleRate changes the sample rate and invalidates every derived view
func (d *Data) SetSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return common.InvalidConfiguration("set sample rate", "sample rate must be positive, got %d", sampleRate)
	}
	d.SampleRate = sampleRate
	d.invalidate()
	return nil
}

// NumberOfSamples returns the current signal length
func (d *Data) NumberOfSamples() int {
	return len(d.timeDomain)
}

// Duration returns the signal length in seconds
func (d *Data) Duration() float64 {
	if d.SampleRate <= 0 {
		return 0
	}
	return float64(len(d.timeDomain)) / float64(d.SampleRate)
}

// WindowSize returns the STFT window size
func (d *Data) WindowSize() int {
	return d.windowSize
}

// HopSize returns the STFT hop size
func (d *Data) HopSize() int {
	return d.hopSize
}

// SetWindow changes the STFT geometry and invalidates every derived view
func (d *Data) SetWindow(windowSize, hopSize int) error {
	if windowSize <= 0 || hopSize <= 0 {
		return common.InvalidConfiguration("set window",
			"window size and hop size must be positive, got %d and %d", windowSize, hopSize)
	}
	d.windowSize = windowSize
	d.hopSize = hopSize
	d.invalidate()
	return nil
}

// Clone returns a Data with the same metadata, geometry and pulse results
// and a copied signal. Caches are not shared.
func (d *Data) Clone() *Data {
	clone := d.WithSignal(d.timeDomain)
	clone.PulseSampleIndices = append([]int(nil), d.PulseSampleIndices...)
	clone.NoiseDropSampleIndices = append([]int(nil), d.NoiseDropSampleIndices...)
	return clone
}

// WithSignal returns a Data sharing this one's metadata and STFT geometry
// but holding a copy of samples and no pulse results.
func (d *Data) WithSignal(samples []float64) *Data {
	return &Data{
		Channels:      d.Channels,
		SampleWidth:   d.SampleWidth,
		SampleRate:    d.SampleRate,
		DecimalSignal: common.Copy(samples),
		PulseWidth:    d.PulseWidth,
		timeDomain:    common.Copy(samples),
		windowSize:    d.windowSize,
		hopSize:       d.hopSize,
		cache:         &cache{},
		logger:        d.logger,
	}
}

// Transform returns the whole-signal engine of the requested variant
func (d *Data) Transform(variant spectral.Variant) (spectral.Transform, error) {
	switch variant {
	case spectral.Full:
		return d.FFT(), nil
	case spectral.RealOptimized:
		return d.RealFFT(), nil
	default:
		return spectral.NewTransform(variant, d.timeDomain, d.SampleRate)
	}
}

// MagnitudeFor returns the cached magnitude spectrum of the requested variant
func (d *Data) MagnitudeFor(variant spectral.Variant) []float64 {
	if variant == spectral.RealOptimized {
		return d.RealMagnitude()
	}
	return d.Magnitude()
}
