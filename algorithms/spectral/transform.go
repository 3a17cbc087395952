package spectral

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

// Variant selects the FFT flavor behind a Transform
type Variant int

const (
	// Full is the complex N-bin transform with resolution sampleRate/N
	Full Variant = iota
	// RealOptimized is the N/2+1 half-spectrum transform with resolution sampleRate/(2(N-1))
	RealOptimized
)

func (v Variant) String() string {
	switch v {
	case Full:
		return "full"
	case RealOptimized:
		return "real"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant maps "full" or "real" to a Variant
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return Full, nil
	case "real", "rfft", "real-optimized":
		return RealOptimized, nil
	default:
		return Full, common.InvalidConfiguration("parse variant", "unknown transform variant %q", s)
	}
}

// Transform is the shared surface of the whole-signal FFT variants
type Transform interface {
	Variant() Variant
	SampleRate() int
	NumberOfSamples() int
	Resolution() float64
	Forward(x []float64) []complex128
	Inverse(spectrum []complex128) []float64
	FrequencyBins() []float64
	BinsForInterval(intervalHz float64) []float64
	AggregateByBinInterval(magnitude []float64, intervalHz float64) (bins, aggregated []float64)
	FindCharacteristicFrequencies(intervalHz float64, magnitude []float64, count int, minFrequency, maxFrequency float64) []Peak
	ReduceNoise(noise []float64, opts SubtractionOptions) (*NoiseReduction, error)
}

var (
	_ Transform = (*FFT)(nil)
	_ Transform = (*RealFFT)(nil)
)

// NewTransform binds signal to the requested variant
func NewTransform(variant Variant, signal []float64, sampleRate int) (Transform, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("new transform", "sample rate must be positive, got %d", sampleRate)
	}

	switch variant {
	case Full:
		return NewFFT(signal, sampleRate), nil
	case RealOptimized:
		return NewRealFFT(signal, sampleRate), nil
	default:
		return nil, common.InvalidConfiguration("new transform", "unknown transform variant %d", int(variant))
	}
}
