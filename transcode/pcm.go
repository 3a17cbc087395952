package transcode

import (
	"encoding/binary"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

// DecodePCM converts little-endian PCM bytes to floating point samples.
//
//	16-bit: s/32768
//	 8-bit: (b-128)/128
//
// Multi-channel data keeps every channels-th sample starting at offset 0,
// selecting the first channel rather than averaging. Other widths fail with
// an UNSUPPORTED_FORMAT error.
func DecodePCM(raw []byte, sampleWidth, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, common.UnsupportedFormat("decode pcm", "invalid channel count %d", channels)
	}

	var decoded []float64
	switch sampleWidth {
	case 2:
		decoded = make([]float64, len(raw)/2)
		for i := range decoded {
			s := int16(binary.LittleEndian.Uint16(raw[2*i:]))
			decoded[i] = float64(s) / 32768.0
		}
	case 1:
		decoded = make([]float64, len(raw))
		for i, b := range raw {
			decoded[i] = (float64(b) - 128) / 128.0
		}
	default:
		return nil, common.UnsupportedFormat("decode pcm", "unsupported sample width: %d bytes", sampleWidth)
	}

	if channels == 1 {
		return decoded, nil
	}

	selected := make([]float64, 0, (len(decoded)+channels-1)/channels)
	for i := 0; i < len(decoded); i += channels {
		selected = append(selected, decoded[i])
	}
	return selected, nil
}

// NormalizeSignal returns a copy of signal scaled so its peak magnitude is 1.
// Silent signals are returned unchanged.
func NormalizeSignal(signal []float64) []float64 {
	return common.PeakNormalize(signal)
}
