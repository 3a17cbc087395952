// Package analyzer compares a recording against a baseline in the
// frequency domain.
package analyzer

import (
	"math"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/signal"
)

// Comparison is the binned magnitude excess of a target over a baseline
type Comparison struct {
	Variant       string    `json:"variant" yaml:"variant"`
	IntervalHz    float64   `json:"interval_hz" yaml:"interval_hz"`
	Bins          []float64 `json:"bins" yaml:"bins"`
	MagnitudeDiff []float64 `json:"magnitude_diff" yaml:"magnitude_diff"`
}

// Comparator compares aggregated magnitude spectra
type Comparator struct {
	variant spectral.Variant
	logger  logging.Logger
}

// ComparatorOption configures a Comparator
type ComparatorOption func(*Comparator)

// WithVariant selects the transform whose magnitude spectrum is compared
func WithVariant(variant spectral.Variant) ComparatorOption {
	return func(c *Comparator) {
		c.variant = variant
	}
}

// WithLogger sets the comparator logger
func WithLogger(logger logging.Logger) ComparatorOption {
	return func(c *Comparator) {
		c.logger = logging.OrGlobal(logger)
	}
}

// NewComparator creates a comparator using the full transform by default
func NewComparator(opts ...ComparatorOption) *Comparator {
	c := &Comparator{
		variant: spectral.Full,
		logger:  logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithFields(logging.Fields{
		"component": "comparator",
		"variant":   c.variant.String(),
	})
	return c
}

// Variant returns the transform variant in use
func (c *Comparator) Variant() spectral.Variant {
	return c.variant
}

// Compare aggregates both magnitude spectra into intervalHz bins and
// returns max(0, target-baseline) per bin. The difference is one-sided:
// Compare(a, b) and Compare(b, a) generally differ. Signals must share
// sample rate and length; nothing is resampled or truncated.
func (c *Comparator) Compare(target, baseline *signal.Data, intervalHz float64) (bins, magnitudeDiff []float64, err error) {
	if err := c.validate(target, baseline, intervalHz); err != nil {
		return nil, nil, err
	}

	transform, err := target.Transform(c.variant)
	if err != nil {
		return nil, nil, err
	}

	bins, targetMagnitude := transform.AggregateByBinInterval(target.MagnitudeFor(c.variant), intervalHz)
	_, baselineMagnitude := transform.AggregateByBinInterval(baseline.MagnitudeFor(c.variant), intervalHz)

	magnitudeDiff = make([]float64, len(targetMagnitude))
	for i := range targetMagnitude {
		magnitudeDiff[i] = math.Max(0, targetMagnitude[i]-baselineMagnitude[i])
	}

	c.logger.Debug("Spectra compared", logging.Fields{
		"samples":     target.NumberOfSamples(),
		"sample_rate": target.SampleRate,
		"interval_hz": intervalHz,
		"bins":        len(bins),
	})

	return bins, magnitudeDiff, nil
}

// CompareWithBaseline runs Compare and packages the result
func (c *Comparator) CompareWithBaseline(target, baseline *signal.Data, intervalHz float64) (*Comparison, error) {
	bins, diff, err := c.Compare(target, baseline, intervalHz)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Variant:       c.variant.String(),
		IntervalHz:    intervalHz,
		Bins:          bins,
		MagnitudeDiff: diff,
	}, nil
}

// CharacteristicFrequencies returns the count largest bins of diff inside
// [minFrequency, maxFrequency], never including bin 0
func (c *Comparator) CharacteristicFrequencies(bins, diff []float64, count int, minFrequency, maxFrequency float64) []spectral.Peak {
	return spectral.FindPeaks(bins, diff, count, minFrequency, maxFrequency)
}

// CompareCharacteristicFrequencies compares target with baseline and
// returns the strongest excess frequencies
func (c *Comparator) CompareCharacteristicFrequencies(target, baseline *signal.Data, intervalHz float64, count int, minFrequency, maxFrequency float64) ([]spectral.Peak, error) {
	bins, diff, err := c.Compare(target, baseline, intervalHz)
	if err != nil {
		return nil, err
	}
	return c.CharacteristicFrequencies(bins, diff, count, minFrequency, maxFrequency), nil
}

func (c *Comparator) validate(target, baseline *signal.Data, intervalHz float64) error {
	if target == nil || baseline == nil {
		return common.InvalidConfiguration("compare", "target and baseline are required")
	}
	if target.SampleRate != baseline.SampleRate {
		return common.DimensionMismatch("compare", "sample rates do not match: %d vs %d",
			target.SampleRate, baseline.SampleRate)
	}
	if target.NumberOfSamples() != baseline.NumberOfSamples() {
		return common.DimensionMismatch("compare", "signal lengths do not match: %d vs %d",
			target.NumberOfSamples(), baseline.NumberOfSamples())
	}
	if target.NumberOfSamples() == 0 {
		return common.EmptySignal("compare")
	}
	if target.SampleRate <= 0 {
		return common.InvalidConfiguration("compare", "sample rate must be positive, got %d", target.SampleRate)
	}
	if intervalHz < 0 || math.IsNaN(intervalHz) || math.IsInf(intervalHz, 0) {
		return common.InvalidConfiguration("compare", "bin interval must be a finite non-negative value, got %v", intervalHz)
	}
	return nil
}
