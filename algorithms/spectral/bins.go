package spectral

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Peak is a frequency bin selected as characteristic of a spectrum
type Peak struct {
	Frequency float64 `json:"frequency" yaml:"frequency"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

// BinWidth returns how many native bins fall into one bin of intervalHz.
// The width never drops below 1, so an interval narrower than the native
// resolution (or a non-positive one) keeps native resolution.
func BinWidth(intervalHz, resolution float64) int {
	if intervalHz <= 0 || resolution <= 0 || math.IsNaN(intervalHz) || math.IsInf(intervalHz, 0) {
		return 1
	}
	return max(1, int(math.Round(intervalHz/resolution)))
}

// IntervalBins returns the bin frequencies for an aggregation over
// nativeBinCount bins: nativeBinCount/width+1 bins spaced width*resolution
// apart. A trailing bin that covers no native bins is labelled 0 Hz.
func IntervalBins(nativeBinCount int, resolution, intervalHz float64) []float64 {
	width := BinWidth(intervalHz, resolution)
	native := max(nativeBinCount, 0)
	covered := (native + width - 1) / width

	bins := make([]float64, native/width+1)
	for i := range min(covered, len(bins)) {
		bins[i] = float64(i*width) * resolution
	}
	return bins
}

// AggregateByBinInterval coarsens a magnitude spectrum by averaging groups of
// native bins. The output has nativeBinCount/width+1 entries; when
// nativeBinCount is a multiple of width the final entry covers no native bins,
// and both its frequency and magnitude stay zero.
func AggregateByBinInterval(magnitude []float64, nativeBinCount int, resolution, intervalHz float64) (bins, aggregated []float64) {
	width := BinWidth(intervalHz, resolution)
	bins = IntervalBins(nativeBinCount, resolution, intervalHz)
	aggregated = make([]float64, len(bins))

	limit := min(max(nativeBinCount, 0), len(magnitude))
	for start := 0; start < limit; start += width {
		end := min(start+width, limit)
		aggregated[start/width] = floats.Sum(magnitude[start:end]) / float64(end-start)
	}

	return bins, aggregated
}

// FindPeaks returns up to count bins with the largest magnitudes inside
// [minFrequency, maxFrequency]. Bin 0 (DC) and any other bin labelled
// 0 Hz are never reported. Equal
// magnitudes keep ascending bin order, so the lower frequency wins ties.
func FindPeaks(bins, magnitudes []float64, count int, minFrequency, maxFrequency float64) []Peak {
	if count <= 0 {
		return []Peak{}
	}

	n := min(len(bins), len(magnitudes))
	candidates := make([]Peak, 0, n)
	for i := 1; i < n; i++ {
		if bins[i] == 0 {
			continue
		}
		if bins[i] < minFrequency || bins[i] > maxFrequency {
			continue
		}
		candidates = append(candidates, Peak{Frequency: bins[i], Magnitude: magnitudes[i]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Magnitude > candidates[j].Magnitude
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}

	return candidates
}

// LinearBins returns count bins spaced resolution apart starting at 0 Hz.
func LinearBins(count int, resolution float64) []float64 {
	bins := make([]float64, max(count, 0))
	for i := range bins {
		bins[i] = float64(i) * resolution
	}
	return bins
}
