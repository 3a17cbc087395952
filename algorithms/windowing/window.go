package windowing

// Window is a tapering function applied to fixed-size frames.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	Coefficient(i int) float64
	GetSize() int
	GetType() string
}

var _ Window = (*Hamming)(nil)
