// Package config holds the analysis configuration shared by the CLI commands.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/filters"
	"github.com/RyanBlaney/sonido-pulse/algorithms/spectral"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/processing"
	"github.com/RyanBlaney/sonido-pulse/transcode"
)

// Config represents the application configuration
type Config struct {
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`

	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
}

// AnalysisConfig contains the signal analysis settings
type AnalysisConfig struct {
	WindowSize int `mapstructure:"window_size" yaml:"window_size" json:"window_size"`
	HopSize    int `mapstructure:"hop_size" yaml:"hop_size" json:"hop_size"`
	// PulseWidth is the pulse length in samples used for isolation and extraction
	PulseWidth int `mapstructure:"pulse_width" yaml:"pulse_width" json:"pulse_width"`

	Input          InputConfig          `mapstructure:"input" yaml:"input" json:"input"`
	Detection      DetectionConfig      `mapstructure:"detection" yaml:"detection" json:"detection"`
	NoiseReduction NoiseReductionConfig `mapstructure:"noise_reduction" yaml:"noise_reduction" json:"noise_reduction"`
	Comparison     ComparisonConfig     `mapstructure:"comparison" yaml:"comparison" json:"comparison"`
	Output         OutputConfig         `mapstructure:"output" yaml:"output" json:"output"`
}

// InputConfig contains WAV decoding settings
type InputConfig struct {
	Normalize  bool    `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
	RemoveDC   bool    `mapstructure:"remove_dc" yaml:"remove_dc" json:"remove_dc"`
	DCCutoffHz float64 `mapstructure:"dc_cutoff_hz" yaml:"dc_cutoff_hz" json:"dc_cutoff_hz"`
}

// DetectionConfig contains pulse detection settings
type DetectionConfig struct {
	SampleOffset          int     `mapstructure:"sample_offset" yaml:"sample_offset" json:"sample_offset"`
	ThresholdMultiplier   float64 `mapstructure:"threshold_multiplier" yaml:"threshold_multiplier" json:"threshold_multiplier"`
	MinGapWindows         int     `mapstructure:"min_gap_windows" yaml:"min_gap_windows" json:"min_gap_windows"`
	MinPulseLengthWindows int     `mapstructure:"min_pulse_length_windows" yaml:"min_pulse_length_windows" json:"min_pulse_length_windows"`
}

// NoiseReductionConfig contains spectral subtraction settings
type NoiseReductionConfig struct {
	BinIntervalHz float64 `mapstructure:"bin_interval_hz" yaml:"bin_interval_hz" json:"bin_interval_hz"`
	Threshold     float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
}

// ComparisonConfig contains baseline comparison settings
type ComparisonConfig struct {
	BinIntervalHz float64 `mapstructure:"bin_interval_hz" yaml:"bin_interval_hz" json:"bin_interval_hz"`
	PeakCount     int     `mapstructure:"peak_count" yaml:"peak_count" json:"peak_count"`
	MinFrequency  float64 `mapstructure:"min_frequency" yaml:"min_frequency" json:"min_frequency"`
	// MaxFrequency of 0 leaves the range open at the top
	MaxFrequency float64 `mapstructure:"max_frequency" yaml:"max_frequency" json:"max_frequency"`
	Variant      string  `mapstructure:"variant" yaml:"variant" json:"variant"` // "full", "real"
}

// OutputConfig contains WAV output settings
type OutputConfig struct {
	// BitDepth of 0 keeps the input sample width
	BitDepth int `mapstructure:"bit_depth" yaml:"bit_depth" json:"bit_depth"`
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		OutputFormat: "table",
		Analysis:     DefaultAnalysisConfig(),
	}
}

// DefaultAnalysisConfig returns the default analysis settings
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		WindowSize: 4096,
		HopSize:    2048,
		PulseWidth: 0,
		Input: InputConfig{
			DCCutoffHz: filters.DefaultDCCutoffHz,
		},
		Detection: DetectionConfig{
			SampleOffset:          processing.DefaultSampleOffset,
			ThresholdMultiplier:   processing.DefaultThresholdMultiplier,
			MinGapWindows:         processing.DefaultMinGapWindows,
			MinPulseLengthWindows: processing.DefaultMinPulseLengthWindows,
		},
		NoiseReduction: NoiseReductionConfig{
			BinIntervalHz: 0,
			Threshold:     spectral.DefaultSubtractionThreshold,
		},
		Comparison: ComparisonConfig{
			BinIntervalHz: 10,
			PeakCount:     5,
			MinFrequency:  0,
			MaxFrequency:  0,
			Variant:       spectral.Full.String(),
		},
		Output: OutputConfig{
			BitDepth: 0,
		},
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return common.InvalidConfiguration("config", "%v", err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return common.InvalidConfiguration("config", "log format must be text or json, got %q", c.LogFormat)
	}

	switch strings.ToLower(c.OutputFormat) {
	case "table", "json", "yaml":
	default:
		return common.InvalidConfiguration("config", "output format must be table, json or yaml, got %q", c.OutputFormat)
	}

	return c.Analysis.Validate()
}

// Validate checks the analysis settings
func (a *AnalysisConfig) Validate() error {
	const op = "analysis config"

	if a.WindowSize <= 0 {
		return common.InvalidConfiguration(op, "window size must be positive")
	}
	if a.HopSize <= 0 {
		return common.InvalidConfiguration(op, "hop size must be positive")
	}
	if a.PulseWidth < 0 {
		return common.InvalidConfiguration(op, "pulse width cannot be negative")
	}
	if !finiteNonNegative(a.Input.DCCutoffHz) {
		return common.InvalidConfiguration(op, "dc cutoff must be finite and non-negative")
	}
	if err := a.DetectionParams().Validate(); err != nil {
		return err
	}
	if !finiteNonNegative(a.NoiseReduction.BinIntervalHz) || !finiteNonNegative(a.NoiseReduction.Threshold) {
		return common.InvalidConfiguration(op, "noise reduction interval and threshold must be finite and non-negative")
	}
	if !finiteNonNegative(a.Comparison.BinIntervalHz) {
		return common.InvalidConfiguration(op, "comparison bin interval must be finite and non-negative")
	}
	if a.Comparison.PeakCount < 0 {
		return common.InvalidConfiguration(op, "peak count cannot be negative")
	}
	if a.Comparison.MaxFrequency != 0 && a.Comparison.MaxFrequency < a.Comparison.MinFrequency {
		return common.InvalidConfiguration(op, "maximum frequency must not be below minimum frequency")
	}
	if _, err := spectral.ParseVariant(a.Comparison.Variant); err != nil {
		return err
	}
	switch a.Output.BitDepth {
	case 0, 8, 16, 24, 32:
	default:
		return common.InvalidConfiguration(op, "bit depth must be 8, 16, 24 or 32, got %d", a.Output.BitDepth)
	}

	return nil
}

// DecoderConfig converts the input settings for the WAV decoder
func (a *AnalysisConfig) DecoderConfig() *transcode.DecoderConfig {
	return &transcode.DecoderConfig{
		Normalize:  a.Input.Normalize,
		RemoveDC:   a.Input.RemoveDC,
		DCCutoffHz: a.Input.DCCutoffHz,
	}
}

// DetectionParams converts the detection settings for the pulse detector
func (a *AnalysisConfig) DetectionParams() processing.DetectionParams {
	return processing.DetectionParams{
		WindowSize:            a.WindowSize,
		SampleOffset:          a.Detection.SampleOffset,
		ThresholdMultiplier:   a.Detection.ThresholdMultiplier,
		MinGapWindows:         a.Detection.MinGapWindows,
		MinPulseLengthWindows: a.Detection.MinPulseLengthWindows,
	}
}

// SubtractionOptions converts the noise reduction settings
func (a *AnalysisConfig) SubtractionOptions() spectral.SubtractionOptions {
	return spectral.SubtractionOptions{
		BinIntervalHz: a.NoiseReduction.BinIntervalHz,
		Threshold:     a.NoiseReduction.Threshold,
	}
}

// FrequencyRange returns the comparison range with an open top mapped to MaxFloat64
func (a *AnalysisConfig) FrequencyRange() (float64, float64) {
	maxFrequency := a.Comparison.MaxFrequency
	if maxFrequency == 0 {
		maxFrequency = math.MaxFloat64
	}
	return a.Comparison.MinFrequency, maxFrequency
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// LoadConfig decodes the configuration held by v over the defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// LoadFile reads a YAML or JSON configuration file over the defaults.
// Unknown extensions are tried as YAML first, then JSON.
func LoadFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		if cfg, err := parseYAML(data); err == nil {
			return cfg, nil
		}
		return parseJSON(data)
	}
}

func parseYAML(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return config, nil
}

func parseJSON(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	return config, nil
}
