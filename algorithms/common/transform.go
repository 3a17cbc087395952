package common

import (
	"math"
	"math/cmplx"
)

// Amplitude returns |x| for every time-domain sample.
func Amplitude(signal []float64) []float64 {
	amplitude := make([]float64, len(signal))
	for i, v := range signal {
		amplitude[i] = math.Abs(v)
	}
	return amplitude
}

// Magnitude returns |z| for every frequency-domain coefficient.
func Magnitude(spectrum []complex128) []float64 {
	magnitude := make([]float64, len(spectrum))
	for i, c := range spectrum {
		magnitude[i] = cmplx.Abs(c)
	}
	return magnitude
}

// MagnitudeSpectrum applies Magnitude to every frame of a spectrogram.
func MagnitudeSpectrum(spectrum [][]complex128) [][]float64 {
	magnitude := make([][]float64, len(spectrum))
	for i, frame := range spectrum {
		magnitude[i] = Magnitude(frame)
	}
	return magnitude
}

// ToDB converts linear values to decibels (20*log10).
// Zero maps to -Inf and negative values to NaN; callers filter these if needed.
func ToDB(values []float64) []float64 {
	db := make([]float64, len(values))
	for i, v := range values {
		db[i] = 20 * math.Log10(v)
	}
	return db
}

// Resize returns a copy of signal with exactly length samples.
// A shorter signal is tiled (whole copies followed by a partial copy),
// a longer one is truncated. The input is never aliased.
func Resize(signal []float64, length int) []float64 {
	if length <= 0 {
		return []float64{}
	}

	resized := make([]float64, length)
	if len(signal) == 0 {
		return resized
	}

	if len(signal) >= length {
		copy(resized, signal[:length])
		return resized
	}

	for offset := 0; offset < length; offset += len(signal) {
		copy(resized[offset:], signal)
	}

	return resized
}

// Copy returns an independent copy of signal.
func Copy(signal []float64) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)
	return out
}

// CopySpectrum returns an independent copy of a complex spectrum.
func CopySpectrum(spectrum []complex128) []complex128 {
	out := make([]complex128, len(spectrum))
	copy(out, spectrum)
	return out
}
