package temporal

import (
	"gonum.org/v1/gonum/floats"
)

// Energy computes per-window signal energy over fixed, non-overlapping windows
type Energy struct {
	windowSize int
}

// NewEnergy creates a new energy calculator
func NewEnergy(windowSize int) *Energy {
	return &Energy{
		windowSize: windowSize,
	}
}

// WindowSize returns the window length in samples
func (e *Energy) WindowSize() int {
	return e.windowSize
}

// WindowCount returns ceil(n/windowSize), the number of windows covering n samples
func (e *Energy) WindowCount(n int) int {
	if e.windowSize <= 0 || n <= 0 {
		return 0
	}
	return (n + e.windowSize - 1) / e.windowSize
}

// ComputeWindowEnergies returns the mean of squared samples for every
// window. The last window may be shorter and is averaged over its own length.
func (e *Energy) ComputeWindowEnergies(signal []float64) []float64 {
	energies := make([]float64, e.WindowCount(len(signal)))

	for w := range energies {
		start := w * e.windowSize
		end := min(start+e.windowSize, len(signal))

		segment := signal[start:end]
		energies[w] = floats.Dot(segment, segment) / float64(len(segment))
	}

	return energies
}

// WindowStart maps a window index to its first sample index
func (e *Energy) WindowStart(window int) int {
	return window * e.windowSize
}
