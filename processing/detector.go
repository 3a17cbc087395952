// Package processing detects pulses in a buffered signal, isolates the
// background noise around them and removes it by spectral subtraction.
package processing

import (
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/temporal"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// Detection defaults
const (
	DefaultSampleOffset          = -44100
	DefaultThresholdMultiplier   = 0.8
	DefaultMinGapWindows         = 10
	DefaultMinPulseLengthWindows = 5
)

// DetectionParams configures a pulse detection run
type DetectionParams struct {
	// WindowSize is the energy window length in samples
	WindowSize int `json:"window_size" yaml:"window_size" mapstructure:"window_size"`
	// SampleOffset is added to every pulse start, typically negative to
	// look back before the detected onset
	SampleOffset int `json:"sample_offset" yaml:"sample_offset" mapstructure:"sample_offset"`
	// ThresholdMultiplier scales the baseline energy into the detection threshold
	ThresholdMultiplier float64 `json:"threshold_multiplier" yaml:"threshold_multiplier" mapstructure:"threshold_multiplier"`
	// MinGapWindows is the largest candidate spacing still treated as one run
	MinGapWindows int `json:"min_gap_windows" yaml:"min_gap_windows" mapstructure:"min_gap_windows"`
	// MinPulseLengthWindows is the run length a pulse must exceed
	MinPulseLengthWindows int `json:"min_pulse_length_windows" yaml:"min_pulse_length_windows" mapstructure:"min_pulse_length_windows"`
}

// DefaultDetectionParams returns the detection defaults for windowSize
func DefaultDetectionParams(windowSize int) DetectionParams {
	return DetectionParams{
		WindowSize:            windowSize,
		SampleOffset:          DefaultSampleOffset,
		ThresholdMultiplier:   DefaultThresholdMultiplier,
		MinGapWindows:         DefaultMinGapWindows,
		MinPulseLengthWindows: DefaultMinPulseLengthWindows,
	}
}

// Validate checks the parameters
func (p DetectionParams) Validate() error {
	if p.WindowSize <= 0 {
		return common.InvalidConfiguration("detect pulses", "window size must be positive, got %d", p.WindowSize)
	}
	if math.IsNaN(p.ThresholdMultiplier) || math.IsInf(p.ThresholdMultiplier, 0) {
		return common.InvalidConfiguration("detect pulses", "threshold multiplier must be finite")
	}
	if p.MinGapWindows < 0 {
		return common.InvalidConfiguration("detect pulses", "minimum gap must not be negative, got %d", p.MinGapWindows)
	}
	if p.MinPulseLengthWindows < 0 {
		return common.InvalidConfiguration("detect pulses",
			"minimum pulse length must not be negative, got %d", p.MinPulseLengthWindows)
	}
	return nil
}

// DetectionResult holds one detection run. Indices are ascending.
type DetectionResult struct {
	PulseSampleIndices     []int `json:"pulse_sample_indices" yaml:"pulse_sample_indices"`
	NoiseDropSampleIndices []int `json:"noise_drop_sample_indices" yaml:"noise_drop_sample_indices"`

	CandidateWindows []int     `json:"candidate_windows" yaml:"candidate_windows"`
	PulseWindows     []int     `json:"pulse_windows" yaml:"pulse_windows"`
	NoiseDropWindows []int     `json:"noise_drop_windows" yaml:"noise_drop_windows"`
	BaselineEnergy   float64   `json:"baseline_energy" yaml:"baseline_energy"`
	Energies         []float64 `json:"-" yaml:"-"`
}

// PulseDetector finds pulse onsets by thresholding window energies against
// the energy of the first window
type PulseDetector struct {
	logger logging.Logger
}

// NewPulseDetector creates a detector. A nil logger uses the global logger.
func NewPulseDetector(logger logging.Logger) *PulseDetector {
	return &PulseDetector{
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "pulse_detector",
		}),
	}
}

// Detect partitions signal into windows and reports pulse starts and noise
// drops as sample indices.
//
// A window w > 0 is a candidate when energy[w]-baseline exceeds
// multiplier*baseline, where baseline is energy[0]. Candidates closer than
// MinGapWindows form a run; a run longer than MinPulseLengthWindows is a
// pulse starting MinPulseLengthWindows candidates back. A gap larger than
// MinGapWindows ends the run and marks a noise drop at the next candidate,
// unless that candidate turns out to start a pulse.
func (d *PulseDetector) Detect(signal []float64, params DetectionParams) (*DetectionResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(signal) == 0 {
		return nil, common.EmptySignal("detect pulses")
	}

	energy := temporal.NewEnergy(params.WindowSize)
	energies := energy.ComputeWindowEnergies(signal)

	baseline := energies[0]
	threshold := params.ThresholdMultiplier * baseline

	var candidates []int
	for w := 1; w < len(energies); w++ {
		if energies[w]-baseline > threshold {
			candidates = append(candidates, w)
		}
	}

	var pulseWindows, dropWindows []int
	consecutive := 0
	findingStart := true

	for i := 0; i < len(candidates)-1; i++ {
		if candidates[i+1]-candidates[i] > params.MinGapWindows {
			consecutive = 0
			findingStart = true
			dropWindows = append(dropWindows, candidates[i+1])
			continue
		}

		consecutive++

		if findingStart && consecutive > params.MinPulseLengthWindows {
			findingStart = false
			pulseWindows = append(pulseWindows, candidates[i-params.MinPulseLengthWindows])
		}
	}

	dropWindows = slices.DeleteFunc(dropWindows, func(w int) bool {
		return slices.Contains(pulseWindows, w)
	})

	result := &DetectionResult{
		PulseSampleIndices:     make([]int, len(pulseWindows)),
		NoiseDropSampleIndices: make([]int, len(dropWindows)),
		CandidateWindows:       candidates,
		PulseWindows:           pulseWindows,
		NoiseDropWindows:       dropWindows,
		BaselineEnergy:         baseline,
		Energies:               energies,
	}
	for i, w := range pulseWindows {
		result.PulseSampleIndices[i] = energy.WindowStart(w) + params.SampleOffset
	}
	for i, w := range dropWindows {
		result.NoiseDropSampleIndices[i] = energy.WindowStart(w)
	}

	if len(pulseWindows) > 0 {
		d.logger.Debug("Pulses detected", logging.Fields{
			"candidate_windows":  candidates,
			"pulse_windows":      pulseWindows,
			"noise_drop_windows": dropWindows,
		})
	} else {
		d.logger.Debug("No significant pulses detected", logging.Fields{
			"windows":         len(energies),
			"baseline_energy": baseline,
		})
	}

	return result, nil
}
