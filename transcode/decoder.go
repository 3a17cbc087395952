// Package transcode reads and writes PCM WAV files.
package transcode

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/filters"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// AudioData represents a decoded WAV file
type AudioData struct {
	Signal          []float64     `json:"-"` // first channel, scaled to [-1, 1)
	RawBytes        []byte        `json:"-"` // interleaved PCM bytes as stored
	Channels        int           `json:"channels"`
	SampleWidth     int           `json:"sample_width"` // bytes per sample
	SampleRate      int           `json:"sample_rate"`
	NumberOfSamples int           `json:"number_of_samples"` // frames per channel
	Duration        time.Duration `json:"duration"`
	Source          string        `json:"source,omitempty"`
}

// BitDepth returns the sample width in bits
func (a *AudioData) BitDepth() int {
	return a.SampleWidth * 8
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// Normalize peak-normalizes the decoded signal to [-1, 1]
	Normalize bool `json:"normalize" yaml:"normalize"`
	// RemoveDC runs a DC blocking filter over the decoded signal
	RemoveDC bool `json:"remove_dc" yaml:"remove_dc"`
	// DCCutoffHz is the DC blocker cutoff, 0 uses filters.DefaultDCCutoffHz
	DCCutoffHz float64 `json:"dc_cutoff_hz" yaml:"dc_cutoff_hz"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Normalize: false,
	}
}

// Decoder decodes PCM WAV data
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new decoder. A nil config uses the defaults.
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "wav_decoder",
		}),
	}
}

// ReadWAV decodes the WAV file at path with the default configuration
func ReadWAV(path string) (*AudioData, error) {
	return NewDecoder(nil).DecodeFile(path)
}

// DecodeWAV decodes WAV data from r with the default configuration
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	return NewDecoder(nil).Decode(r)
}

// DecodeFile opens and decodes the WAV file at path
func (d *Decoder) DecodeFile(path string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"file": path,
	})

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	audio, err := d.Decode(f)
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	audio.Source = path

	logger.Debug("Audio file decoded", logging.Fields{
		"channels":     audio.Channels,
		"sample_width": audio.SampleWidth,
		"sample_rate":  audio.SampleRate,
		"samples":      audio.NumberOfSamples,
	})

	return audio, nil
}

// Decode reads the RIFF header and PCM chunk from r and converts the first
// channel to floating point.
func (d *Decoder) Decode(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, common.NewAnalysisError(common.ErrCodeUnsupportedFormat, "decode wav", "invalid wav header", err)
	}
	if !dec.IsValidFile() {
		return nil, common.UnsupportedFormat("decode wav", "not a valid PCM wav file")
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to locate PCM data: %w", err)
	}
	if dec.PCMChunk == nil {
		return nil, common.UnsupportedFormat("decode wav", "missing PCM data chunk")
	}

	channels := int(dec.NumChans)
	sampleWidth := int(dec.BitDepth) / 8

	raw := make([]byte, dec.PCMChunk.Size)
	n, err := io.ReadFull(dec.PCMChunk, raw)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	raw = raw[:n]

	samples, err := DecodePCM(raw, sampleWidth, channels)
	if err != nil {
		return nil, err
	}

	sampleRate := int(dec.SampleRate)

	if d.config.RemoveDC {
		cutoff := d.config.DCCutoffHz
		if cutoff == 0 {
			cutoff = filters.DefaultDCCutoffHz
		}
		dc, err := filters.NewDCRemoval(sampleRate, cutoff)
		if err != nil {
			return nil, err
		}
		samples = dc.ProcessBuffer(samples)
	}

	if d.config.Normalize {
		samples = NormalizeSignal(samples)
	}

	audio := &AudioData{
		Signal:          samples,
		RawBytes:        raw,
		Channels:        channels,
		SampleWidth:     sampleWidth,
		SampleRate:      sampleRate,
		NumberOfSamples: len(samples),
	}
	if sampleRate > 0 {
		audio.Duration = time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))
	}

	return audio, nil
}

// GetConfig returns the decoder configuration
func (d *Decoder) GetConfig() DecoderConfig {
	return *d.config
}
