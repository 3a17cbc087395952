package signal

import (
	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// cache holds every view derived from the time-domain signal. A nil field
// has not been computed yet.
type cache struct {
	fft  *spectral.FFT
	rfft *spectral.RealFFT
	stft *spectral.STFT

	frequencyDomain   []complex128
	realSpectrum      []complex128
	timeBins          []float64
	frequencyBins     []float64
	realFrequencyBins []float64
	amplitude         []float64
	magnitude         []float64
	amplitudeDB       []float64
	magnitudeDB       []float64
	realMagnitude     []float64
	normalized        []float64

	stftSpectrum  [][]complex128
	stftMagnitude [][]float64
	stftAverage   []float64
	stftTimes     []float64
}

// invalidate drops every derived view. Engines are rebound to the current
// signal and geometry on next use.
func (d *Data) invalidate() {
	d.cache = &cache{}
	d.logger.Debug("Derived signal views invalidated", logging.Fields{
		"samples":     len(d.timeDomain),
		"window_size": d.windowSize,
		"hop_size":    d.hopSize,
	})
}

// FFT returns the full transform bound to the current signal
func (d *Data) FFT() *spectral.FFT {
	if d.cache.fft == nil {
		d.cache.fft = spectral.NewFFT(d.timeDomain, d.SampleRate)
	}
	return d.cache.fft
}

// RealFFT returns the half-spectrum transform bound to the current signal
func (d *Data) RealFFT() *spectral.RealFFT {
	if d.cache.rfft == nil {
		d.cache.rfft = spectral.NewRealFFT(d.timeDomain, d.SampleRate)
	}
	return d.cache.rfft
}

// STFT returns the short-time engine bound to the current signal and geometry
func (d *Data) STFT() (*spectral.STFT, error) {
	if d.cache.stft == nil {
		stft, err := spectral.NewSTFT(d.timeDomain, d.SampleRate, d.windowSize, d.hopSize)
		if err != nil {
			return nil, err
		}
		d.cache.stft = stft
	}
	return d.cache.stft, nil
}

// FrequencyDomainSignal returns the N-bin full spectrum
func (d *Data) FrequencyDomainSignal() []complex128 {
	if d.cache.frequencyDomain == nil {
		d.cache.frequencyDomain = d.FFT().Forward(d.timeDomain)
	}
	return d.cache.frequencyDomain
}

// RealFrequencyDomainSignal returns the N/2+1 bin half spectrum
func (d *Data) RealFrequencyDomainSignal() []complex128 {
	if d.cache.realSpectrum == nil {
		d.cache.realSpectrum = d.RealFFT().Forward(d.timeDomain)
	}
	return d.cache.realSpectrum
}

// TimeBins returns i/sampleRate for every sample
func (d *Data) TimeBins() []float64 {
	if d.cache.timeBins == nil {
		bins := make([]float64, len(d.timeDomain))
		if d.SampleRate > 0 {
			for i := range bins {
				bins[i] = float64(i) / float64(d.SampleRate)
			}
		}
		d.cache.timeBins = bins
	}
	return d.cache.timeBins
}

// FrequencyBins returns k*sampleRate/N for k in [0, N/2]
func (d *Data) FrequencyBins() []float64 {
	if d.cache.frequencyBins == nil {
		d.cache.frequencyBins = d.FFT().FrequencyBins()
	}
	return d.cache.frequencyBins
}

// RealFrequencyBins returns k*sampleRate/(2(N-1)) for k in [0, N/2]
func (d *Data) RealFrequencyBins() []float64 {
	if d.cache.realFrequencyBins == nil {
		d.cache.realFrequencyBins = d.RealFFT().FrequencyBins()
	}
	return d.cache.realFrequencyBins
}

// Amplitude returns |x| of the time-domain signal
func (d *Data) Amplitude() []float64 {
	if d.cache.amplitude == nil {
		d.cache.amplitude = common.Amplitude(d.timeDomain)
	}
	return d.cache.amplitude
}

// Magnitude returns |X| of the full spectrum
func (d *Data) Magnitude() []float64 {
	if d.cache.magnitude == nil {
		d.cache.magnitude = common.Magnitude(d.FrequencyDomainSignal())
	}
	return d.cache.magnitude
}

// RealMagnitude returns |X| of the half spectrum
func (d *Data) RealMagnitude() []float64 {
	if d.cache.realMagnitude == nil {
		d.cache.realMagnitude = common.Magnitude(d.RealFrequencyDomainSignal())
	}
	return d.cache.realMagnitude
}

// AmplitudeDB returns the amplitude in decibels
func (d *Data) AmplitudeDB() []float64 {
	if d.cache.amplitudeDB == nil {
		d.cache.amplitudeDB = common.ToDB(d.Amplitude())
	}
	return d.cache.amplitudeDB
}

// MagnitudeDB returns the full-spectrum magnitude in decibels
func (d *Data) MagnitudeDB() []float64 {
	if d.cache.magnitudeDB == nil {
		d.cache.magnitudeDB = common.ToDB(d.Magnitude())
	}
	return d.cache.magnitudeDB
}

// Normalized returns the signal peak-normalized to [-1, 1]
func (d *Data) Normalized() []float64 {
	if d.cache.normalized == nil {
		d.cache.normalized = common.PeakNormalize(d.timeDomain)
	}
	return d.cache.normalized
}

// STFTSpectrum returns the complex spectrogram
func (d *Data) STFTSpectrum() ([][]complex128, error) {
	if d.cache.stftSpectrum == nil {
		stft, err := d.STFT()
		if err != nil {
			return nil, err
		}
		d.cache.stftSpectrum = stft.Spectrum()
	}
	return d.cache.stftSpectrum, nil
}

// STFTMagnitudeSpectrum returns |X| for every frame of the spectrogram
func (d *Data) STFTMagnitudeSpectrum() ([][]float64, error) {
	if d.cache.stftMagnitude == nil {
		spectrum, err := d.STFTSpectrum()
		if err != nil {
			return nil, err
		}
		d.cache.stftMagnitude = common.MagnitudeSpectrum(spectrum)
	}
	return d.cache.stftMagnitude, nil
}

// STFTAverageMagnitude returns the frame-averaged magnitude spectrum
func (d *Data) STFTAverageMagnitude() ([]float64, error) {
	if d.cache.stftAverage == nil {
		stft, err := d.STFT()
		if err != nil {
			return nil, err
		}
		magnitude, err := d.STFTMagnitudeSpectrum()
		if err != nil {
			return nil, err
		}
		d.cache.stftAverage = stft.AverageMagnitude(magnitude)
	}
	return d.cache.stftAverage, nil
}

// STFTTimeBins returns the start time in seconds of every frame
func (d *Data) STFTTimeBins() ([]float64, error) {
	if d.cache.stftTimes == nil {
		stft, err := d.STFT()
		if err != nil {
			return nil, err
		}
		d.cache.stftTimes = stft.TimeBins()
	}
	return d.cache.stftTimes, nil
}
