package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinWidth(t *testing.T) {
	tests := []struct {
		name       string
		interval   float64
		resolution float64
		want       int
	}{
		{"exact multiple", 2000, 1000, 2},
		{"rounds to nearest", 2600, 1000, 3},
		{"narrower than resolution clamps", 100, 1000, 1},
		{"zero interval", 0, 1000, 1},
		{"negative interval", -50, 1000, 1},
		{"zero resolution", 2000, 0, 1},
		{"infinite interval", math.Inf(1), 1000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BinWidth(tt.interval, tt.resolution))
		})
	}
}

func TestAggregateByBinInterval(t *testing.T) {
	magnitude := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	bins, aggregated := AggregateByBinInterval(magnitude, 8, 1000, 2000)

	assert.Equal(t, []float64{0, 2000, 4000, 6000, 0}, bins)
	assert.Equal(t, []float64{1.5, 3.5, 5.5, 7.5, 0}, aggregated)
}

func TestAggregateByBinIntervalPartialGroup(t *testing.T) {
	magnitude := []float64{2, 4, 6, 8, 10}

	bins, aggregated := AggregateByBinInterval(magnitude, 5, 10, 20)

	assert.Len(t, bins, 3)
	assert.Equal(t, []float64{3, 7, 10}, aggregated)
}

func TestFindPeaksExcludesDC(t *testing.T) {
	peaks := FindPeaks([]float64{0, 100, 200}, []float64{99, 5, 3}, 2, 0, 1000)

	assert.Equal(t, []Peak{
		{Frequency: 100, Magnitude: 5},
		{Frequency: 200, Magnitude: 3},
	}, peaks)
}

func TestFindPeaksFiltersAndTruncates(t *testing.T) {
	bins := []float64{0, 100, 200, 300, 400}
	mags := []float64{0, 9, 1, 7, 8}

	peaks := FindPeaks(bins, mags, 5, 150, 350)
	assert.Equal(t, []Peak{{300, 7}, {200, 1}}, peaks)

	peaks = FindPeaks(bins, mags, 1, 0, 1000)
	assert.Equal(t, []Peak{{100, 9}}, peaks)

	assert.Empty(t, FindPeaks(bins, mags, 0, 0, 1000))
}

func TestFindPeaksTiesPreferLowerFrequency(t *testing.T) {
	peaks := FindPeaks([]float64{0, 100, 200, 300}, []float64{0, 4, 4, 4}, 2, 0, 1000)

	assert.Equal(t, []Peak{{100, 4}, {200, 4}}, peaks)
}

func TestFindPeaksSkipsUncoveredTrailingBin(t *testing.T) {
	bins, aggregated := AggregateFullSpectrum([]float64{0, 4, 1, 1, 0, 1, 1, 4}, 8000, 8, 0)
	require.Len(t, bins, 9)
	assert.Zero(t, bins[8])

	peaks := FindPeaks(bins, aggregated, 20, 0, math.MaxFloat64)

	require.Len(t, peaks, 7)
	for _, p := range peaks {
		assert.NotZero(t, p.Frequency)
		assert.Less(t, p.Frequency, 8000.0)
	}
	assert.Equal(t, Peak{Frequency: 1000, Magnitude: 4}, peaks[0])
	assert.Equal(t, Peak{Frequency: 7000, Magnitude: 4}, peaks[1])
}
