package config

import (
	"github.com/spf13/viper"
)

// SetDefaults registers every default value with v so environment
// variables and config files can override individual keys
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output_format", d.OutputFormat)

	a := d.Analysis
	v.SetDefault("analysis.window_size", a.WindowSize)
	v.SetDefault("analysis.hop_size", a.HopSize)
	v.SetDefault("analysis.pulse_width", a.PulseWidth)

	v.SetDefault("analysis.input.normalize", a.Input.Normalize)
	v.SetDefault("analysis.input.remove_dc", a.Input.RemoveDC)
	v.SetDefault("analysis.input.dc_cutoff_hz", a.Input.DCCutoffHz)

	v.SetDefault("analysis.detection.sample_offset", a.Detection.SampleOffset)
	v.SetDefault("analysis.detection.threshold_multiplier", a.Detection.ThresholdMultiplier)
	v.SetDefault("analysis.detection.min_gap_windows", a.Detection.MinGapWindows)
	v.SetDefault("analysis.detection.min_pulse_length_windows", a.Detection.MinPulseLengthWindows)

	v.SetDefault("analysis.noise_reduction.bin_interval_hz", a.NoiseReduction.BinIntervalHz)
	v.SetDefault("analysis.noise_reduction.threshold", a.NoiseReduction.Threshold)

	v.SetDefault("analysis.comparison.bin_interval_hz", a.Comparison.BinIntervalHz)
	v.SetDefault("analysis.comparison.peak_count", a.Comparison.PeakCount)
	v.SetDefault("analysis.comparison.min_frequency", a.Comparison.MinFrequency)
	v.SetDefault("analysis.comparison.max_frequency", a.Comparison.MaxFrequency)
	v.SetDefault("analysis.comparison.variant", a.Comparison.Variant)

	v.SetDefault("analysis.output.bit_depth", a.Output.BitDepth)
}
