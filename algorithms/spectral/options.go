package spectral

// DefaultSubtractionThreshold is the magnitude below which cleaned bins are zeroed
const DefaultSubtractionThreshold = 1e-10

// SubtractionOptions configures spectral subtraction
type SubtractionOptions struct {
	// BinIntervalHz groups native bins before subtracting; 0 works per bin
	BinIntervalHz float64 `json:"bin_interval_hz" yaml:"bin_interval_hz"`
	// Threshold zeroes cleaned bins whose magnitude falls below it
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// DefaultSubtractionOptions returns per-bin subtraction with the default threshold
func DefaultSubtractionOptions() SubtractionOptions {
	return SubtractionOptions{
		BinIntervalHz: 0,
		Threshold:     DefaultSubtractionThreshold,
	}
}

// NoiseReduction holds a denoised signal and the spectrum it was rebuilt from
type NoiseReduction struct {
	Signal   []float64
	Spectrum []complex128
}
