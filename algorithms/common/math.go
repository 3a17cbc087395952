package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// MeanSquare returns the mean of the squared samples.
func MeanSquare(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data) / float64(len(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	return math.Sqrt(MeanSquare(data))
}

// MaxAbs returns the largest absolute sample value.
func MaxAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// PeakNormalize scales a copy of data so the largest magnitude is 1.
// Silent input is returned unchanged.
func PeakNormalize(data []float64) []float64 {
	normalized := Copy(data)
	peak := MaxAbs(data)
	if peak == 0 {
		return normalized
	}
	floats.Scale(1/peak, normalized)
	return normalized
}

// Clamp restricts value to [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
