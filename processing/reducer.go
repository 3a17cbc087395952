package processing

import (
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/signal"
)

// NoiseReducer builds a noise-only signal from the gaps between pulses and
// subtracts its spectrum from the full signal
type NoiseReducer struct {
	logger logging.Logger
}

// NewNoiseReducer creates a reducer. A nil logger uses the global logger.
func NewNoiseReducer(logger logging.Logger) *NoiseReducer {
	return &NoiseReducer{
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "noise_reducer",
		}),
	}
}

// IsolateNoise returns the samples of signal outside every excluded span,
// in order. Each pulse start excludes [start, start+pulseWidth) and each
// noise drop excludes [drop, drop+windowSize). Spans are clipped to the
// signal, so starts before sample 0 only exclude their in-range part.
func (r *NoiseReducer) IsolateNoise(samples []float64, pulseStarts []int, pulseWidth int, noiseDrops []int, windowSize int) []float64 {
	excluded := make([]bool, len(samples))

	exclude := func(start, length int) {
		end := min(start+length, len(samples))
		for i := max(start, 0); i < end; i++ {
			excluded[i] = true
		}
	}

	for _, drop := range noiseDrops {
		exclude(drop, windowSize)
	}
	for _, start := range pulseStarts {
		exclude(start, pulseWidth)
	}

	noise := make([]float64, 0, len(samples))
	for i, v := range samples {
		if !excluded[i] {
			noise = append(noise, v)
		}
	}

	r.logger.Debug("Noise segments isolated", logging.Fields{
		"samples":       len(samples),
		"noise_samples": len(noise),
		"pulses":        len(pulseStarts),
		"noise_drops":   len(noiseDrops),
	})

	return noise
}

// Reduce runs frame-wise spectral subtraction of noise over data's signal
// using data's STFT geometry. data is not modified.
func (r *NoiseReducer) Reduce(data *signal.Data, noise []float64, opts spectral.SubtractionOptions) (*spectral.STFTNoiseReduction, error) {
	stft, err := data.STFT()
	if err != nil {
		return nil, err
	}

	result, err := stft.ReduceNoise(noise, opts)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Noise reduced", logging.Fields{
		"samples":       data.NumberOfSamples(),
		"noise_samples": len(noise),
		"frames":        stft.FrameCount(),
	})

	return result, nil
}
