package transcode

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// DefaultBitDepth is used when no sample width is known
const DefaultBitDepth = 16

// WAVPath appends ".wav" to path unless it already ends with it
func WAVPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path
	}
	return path + ".wav"
}

// WriteWAV writes signal as a mono PCM WAV file and returns the path written.
// Samples are clamped to [-1, 1]. Supported bit depths are 8, 16, 24 and 32.
func WriteWAV(path string, signal []float64, sampleRate, bitDepth int) (string, error) {
	if sampleRate <= 0 {
		return "", common.InvalidConfiguration("write wav", "sample rate must be positive, got %d", sampleRate)
	}
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}

	data, err := quantize(signal, bitDepth)
	if err != nil {
		return "", err
	}

	path = WAVPath(path)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return "", fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize wav file: %w", err)
	}

	logging.Debug("WAV file written", logging.Fields{
		"component":   "wav_encoder",
		"file":        path,
		"samples":     len(signal),
		"sample_rate": sampleRate,
		"bit_depth":   bitDepth,
	})

	return path, nil
}

// quantize maps [-1, 1] samples to integer PCM values. 8-bit PCM is
// unsigned with 128 as silence; wider formats are signed.
func quantize(signal []float64, bitDepth int) ([]int, error) {
	data := make([]int, len(signal))

	switch bitDepth {
	case 8:
		for i, v := range signal {
			q := math.Round(common.Clamp(v, -1, 1)*128) + 128
			data[i] = int(common.Clamp(q, 0, 255))
		}
	case 16, 24, 32:
		scale := math.Exp2(float64(bitDepth-1)) - 1
		for i, v := range signal {
			data[i] = int(math.Round(common.Clamp(v, -1, 1) * scale))
		}
	default:
		return nil, common.UnsupportedFormat("write wav", "unsupported bit depth: %d", bitDepth)
	}

	return data, nil
}
