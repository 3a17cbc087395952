// Package filters holds time-domain filters applied to decoded signals
// before analysis.
package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

// DefaultDCCutoffHz is the -3dB cutoff used when removing DC offset
const DefaultDCCutoffHz = 5.0

// DCRemoval is a one-pole DC blocking filter:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R, 0 < R < 1

	x1 float64
	y1 float64
}

// NewDCRemoval creates a DC blocker with the given -3dB cutoff. The pole is
// placed at R = 1 - 2*pi*fc/fs; a pole at or above 1 becomes 0.999 and one
// at or below 0 becomes 0.001.
func NewDCRemoval(sampleRate int, cutoffHz float64) (*DCRemoval, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("dc removal", "sample rate must be positive, got %d", sampleRate)
	}
	if cutoffHz <= 0 || math.IsNaN(cutoffHz) || math.IsInf(cutoffHz, 0) {
		return nil, common.InvalidConfiguration("dc removal", "cutoff must be positive, got %v", cutoffHz)
	}

	pole := 1.0 - 2.0*math.Pi*cutoffHz/float64(sampleRate)
	if pole >= 1.0 {
		pole = 0.999
	} else if pole <= 0.0 {
		pole = 0.001
	}
	return &DCRemoval{poleLocation: pole}, nil
}

// PoleLocation returns R
func (dc *DCRemoval) PoleLocation() float64 {
	return dc.poleLocation
}

// CutoffFrequency returns the approximate -3dB cutoff at sampleRate
func (dc *DCRemoval) CutoffFrequency(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return (1.0 - dc.poleLocation) * float64(sampleRate) / (2.0 * math.Pi)
}

// Process filters one sample, carrying state across calls
func (dc *DCRemoval) Process(x float64) float64 {
	y := x - dc.x1 + dc.poleLocation*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// ProcessBuffer resets the state and filters a whole signal into a new slice
func (dc *DCRemoval) ProcessBuffer(signal []float64) []float64 {
	dc.Reset()

	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = dc.Process(x)
	}
	return out
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
