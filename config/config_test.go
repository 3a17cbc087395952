package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	params := cfg.Analysis.DetectionParams()
	assert.Equal(t, 4096, params.WindowSize)
	assert.Equal(t, -44100, params.SampleOffset)
	assert.Equal(t, 0.8, params.ThresholdMultiplier)
	assert.Equal(t, 10, params.MinGapWindows)
	assert.Equal(t, 5, params.MinPulseLengthWindows)

	opts := cfg.Analysis.SubtractionOptions()
	assert.Equal(t, 1e-10, opts.Threshold)
	assert.Zero(t, opts.BinIntervalHz)

	minF, maxF := cfg.Analysis.FrequencyRange()
	assert.Zero(t, minF)
	assert.Equal(t, math.MaxFloat64, maxF)

	decoder := cfg.Analysis.DecoderConfig()
	assert.False(t, decoder.Normalize)
	assert.False(t, decoder.RemoveDC)
	assert.Equal(t, 5.0, decoder.DCCutoffHz)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"window size", func(c *Config) { c.Analysis.WindowSize = 0 }},
		{"hop size", func(c *Config) { c.Analysis.HopSize = -1 }},
		{"pulse width", func(c *Config) { c.Analysis.PulseWidth = -5 }},
		{"dc cutoff", func(c *Config) { c.Analysis.Input.DCCutoffHz = math.Inf(1) }},
		{"min gap", func(c *Config) { c.Analysis.Detection.MinGapWindows = -1 }},
		{"threshold", func(c *Config) { c.Analysis.NoiseReduction.Threshold = math.NaN() }},
		{"interval", func(c *Config) { c.Analysis.Comparison.BinIntervalHz = -10 }},
		{"frequency range", func(c *Config) {
			c.Analysis.Comparison.MinFrequency = 500
			c.Analysis.Comparison.MaxFrequency = 100
		}},
		{"variant", func(c *Config) { c.Analysis.Comparison.Variant = "wavelet" }},
		{"bit depth", func(c *Config) { c.Analysis.Output.BitDepth = 12 }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"output format", func(c *Config) { c.OutputFormat = "csv" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfiguration)
		})
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "pulse.yaml", `
log_level: debug
analysis:
  window_size: 1024
  pulse_width: 22050
  detection:
    threshold_multiplier: 1.5
  comparison:
    variant: real
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.Analysis.WindowSize)
	assert.Equal(t, 2048, cfg.Analysis.HopSize)
	assert.Equal(t, 22050, cfg.Analysis.PulseWidth)
	assert.Equal(t, 1.5, cfg.Analysis.Detection.ThresholdMultiplier)
	assert.Equal(t, 10, cfg.Analysis.Detection.MinGapWindows)
	assert.Equal(t, "real", cfg.Analysis.Comparison.Variant)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, "pulse.json", `{"output_format": "json", "analysis": {"hop_size": 512}}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 512, cfg.Analysis.HopSize)
	assert.Equal(t, 4096, cfg.Analysis.WindowSize)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "broken.json", `{"analysis": `))
	assert.Error(t, err)
}

func TestLoadConfigFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("analysis.window_size", 2048)
	v.Set("analysis.comparison.peak_count", 3)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Analysis.WindowSize)
	assert.Equal(t, 2048, cfg.Analysis.HopSize)
	assert.Equal(t, 3, cfg.Analysis.Comparison.PeakCount)
	assert.Equal(t, -44100, cfg.Analysis.Detection.SampleOffset)
	assert.Equal(t, "table", cfg.OutputFormat)
}
