package processing

import (
	"fmt"
	"path/filepath"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/signal"
	"github.com/RyanBlaney/sonido-pulse/transcode"
)

// Processor runs the detection and denoising pipeline over one recording.
// It owns the original Data, the noise Data isolated from it and the
// extracted pulse Data.
type Processor struct {
	original *signal.Data
	noise    *signal.Data
	pulses   []*signal.Data
	bitDepth int

	detector *PulseDetector
	reducer  *NoiseReducer
	logger   logging.Logger
}

// NewProcessor creates a processor for original. A nil logger uses the
// global logger.
func NewProcessor(original *signal.Data, logger logging.Logger) *Processor {
	logger = logging.OrGlobal(logger)
	return &Processor{
		original: original,
		noise:    original.WithSignal(nil),
		detector: NewPulseDetector(logger),
		reducer:  NewNoiseReducer(logger),
		logger: logger.WithFields(logging.Fields{
			"component": "processor",
		}),
	}
}

// Original returns the processed recording
func (p *Processor) Original() *signal.Data {
	return p.original
}

// Noise returns the noise Data built by the last IdentifyNoiseSegments
func (p *Processor) Noise() *signal.Data {
	return p.noise
}

// SetBitDepth overrides the bit depth of written WAV files. Zero keeps the
// original sample width.
func (p *Processor) SetBitDepth(bitDepth int) {
	p.bitDepth = bitDepth
}

// Pulses returns the pulse Data built by the last ExtractPulses
func (p *Processor) Pulses() []*signal.Data {
	return p.pulses
}

// DetectPulses runs the detector over the original signal and stores the
// results on it. A zero params.WindowSize uses the original STFT window size.
func (p *Processor) DetectPulses(params DetectionParams) (*DetectionResult, error) {
	if params.WindowSize == 0 {
		params.WindowSize = p.original.WindowSize()
	}

	result, err := p.detector.Detect(p.original.TimeDomainSignal(), params)
	if err != nil {
		return nil, fmt.Errorf("pulse detection failed: %w", err)
	}

	p.original.PulseSampleIndices = result.PulseSampleIndices
	p.original.NoiseDropSampleIndices = result.NoiseDropSampleIndices

	p.logger.Info("Pulse detection completed", logging.Fields{
		"pulses":      len(result.PulseSampleIndices),
		"noise_drops": len(result.NoiseDropSampleIndices),
	})

	return result, nil
}

// IdentifyNoiseSegments rebuilds the noise Data from the samples outside
// every detected pulse and noise drop
func (p *Processor) IdentifyNoiseSegments() *signal.Data {
	noise := p.reducer.IsolateNoise(
		p.original.TimeDomainSignal(),
		p.original.PulseSampleIndices,
		p.original.PulseWidth,
		p.original.NoiseDropSampleIndices,
		p.original.WindowSize(),
	)
	p.noise = p.original.WithSignal(noise)
	return p.noise
}

// ReduceNoise isolates the noise, subtracts it from the original signal and
// replaces the original signal with the cleaned one
func (p *Processor) ReduceNoise(opts spectral.SubtractionOptions) (*spectral.STFTNoiseReduction, error) {
	noise := p.IdentifyNoiseSegments()
	if noise.NumberOfSamples() == 0 {
		return nil, common.NewAnalysisError(common.ErrCodeEmptySignal, "reduce noise",
			"no noise samples outside detected pulses", nil)
	}

	result, err := p.reducer.Reduce(p.original, noise.TimeDomainSignal(), opts)
	if err != nil {
		return nil, fmt.Errorf("noise reduction failed: %w", err)
	}

	p.original.SetTimeDomainSignal(result.Signal)
	return result, nil
}

// ExtractPulses cuts PulseWidth samples at every pulse start. Spans are
// clipped to the signal and pulses with no samples left are skipped.
func (p *Processor) ExtractPulses() ([]*signal.Data, error) {
	width := p.original.PulseWidth
	if width <= 0 {
		return nil, common.InvalidConfiguration("extract pulses", "pulse width must be positive, got %d", width)
	}

	samples := p.original.TimeDomainSignal()
	p.pulses = make([]*signal.Data, 0, len(p.original.PulseSampleIndices))

	for _, start := range p.original.PulseSampleIndices {
		from := max(start, 0)
		to := min(start+width, len(samples))
		if from >= to {
			p.logger.Warn("Pulse outside signal skipped", logging.Fields{
				"pulse_start": start,
				"samples":     len(samples),
			})
			continue
		}
		p.pulses = append(p.pulses, p.original.WithSignal(samples[from:to]))
	}

	return p.pulses, nil
}

// SavePulses extracts the pulses and writes each one to
// dir/<baseName>_<i>.wav. It returns the paths written.
func (p *Processor) SavePulses(dir, baseName string) ([]string, error) {
	pulses, err := p.ExtractPulses()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(pulses))
	for i, pulse := range pulses {
		path, err := p.SaveSignal(filepath.Join(dir, fmt.Sprintf("%s_%d", baseName, i)), pulse.TimeDomainSignal())
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	p.logger.Info("Pulses saved", logging.Fields{
		"directory": dir,
		"count":     len(paths),
	})

	return paths, nil
}

// SaveSignal writes samples as a mono WAV at the original sample rate and
// width, appending ".wav" to path when missing
func (p *Processor) SaveSignal(path string, samples []float64) (string, error) {
	bitDepth := p.bitDepth
	if bitDepth == 0 {
		bitDepth = p.original.SampleWidth * 8
	}
	if bitDepth == 0 {
		bitDepth = transcode.DefaultBitDepth
	}
	return transcode.WriteWAV(path, samples, p.original.SampleRate, bitDepth)
}
