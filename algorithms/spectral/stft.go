package spectral

import (
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

// STFT frames a bound signal with a symmetric Hamming window and runs the
// full FFT on every frame. The frame count is fixed at construction:
//
//	frames = (N-windowSize)/hopSize + 1
//
// Samples after the end of the last frame are not covered by any frame.
type STFT struct {
	signal     []float64
	sampleRate int
	windowSize int
	hopSize    int
	frameCount int
	window     *windowing.Hamming
	fft        *FFT
	logger     logging.Logger
}

// STFTNoiseReduction holds the output of frame-wise spectral subtraction
type STFTNoiseReduction struct {
	Signal    []float64
	Spectrum  [][]complex128
	Magnitude [][]float64
}

// NewSTFT creates a new STFT calculator bound to signal
func NewSTFT(signal []float64, sampleRate, windowSize, hopSize int) (*STFT, error) {
	if len(signal) == 0 {
		return nil, common.EmptySignal("new stft")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("new stft", "sample rate must be positive, got %d", sampleRate)
	}
	if windowSize <= 0 {
		return nil, common.InvalidConfiguration("new stft", "window size must be positive, got %d", windowSize)
	}
	if hopSize <= 0 {
		return nil, common.InvalidConfiguration("new stft", "hop size must be positive, got %d", hopSize)
	}
	if windowSize > len(signal) {
		return nil, common.InvalidConfiguration("new stft",
			"window size %d exceeds signal length %d", windowSize, len(signal))
	}

	return &STFT{
		signal:     signal,
		sampleRate: sampleRate,
		windowSize: windowSize,
		hopSize:    hopSize,
		frameCount: (len(signal)-windowSize)/hopSize + 1,
		window:     windowing.NewHamming(windowSize, true),
		fft:        NewFFT(make([]float64, windowSize), sampleRate),
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}, nil
}

// FrameCount returns the number of frames fixed at construction
func (s *STFT) FrameCount() int {
	return s.frameCount
}

// WindowSize returns the frame length in samples
func (s *STFT) WindowSize() int {
	return s.windowSize
}

// HopSize returns the distance between frame starts in samples
func (s *STFT) HopSize() int {
	return s.hopSize
}

// SampleRate returns the bound sample rate
func (s *STFT) SampleRate() int {
	return s.sampleRate
}

// NumberOfSamples returns N, the bound signal length
func (s *STFT) NumberOfSamples() int {
	return len(s.signal)
}

// Spectrum returns the complex spectrogram of the bound signal
func (s *STFT) Spectrum() [][]complex128 {
	return s.FrameSpectrum(s.signal)
}

// FrameSpectrum frames x with the bound geometry and returns one
// windowSize-bin spectrum per frame. x is resized to N first so noise
// signals of any length map onto the same frame grid.
func (s *STFT) FrameSpectrum(x []float64) [][]complex128 {
	if len(x) != len(s.signal) {
		x = common.Resize(x, len(s.signal))
	}

	spectrum := make([][]complex128, s.frameCount)

	jobs := make(chan int, s.frameCount)
	for frame := range s.frameCount {
		jobs <- frame
	}
	close(jobs)

	var wg sync.WaitGroup
	for range s.workerCount() {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for frame := range jobs {
				buffer := make([]float64, s.windowSize)
				start := frame * s.hopSize
				copy(buffer, x[start:start+s.windowSize])
				_ = s.window.ApplyInPlace(buffer)
				spectrum[frame] = s.fft.Forward(buffer)
			}
		}()
	}
	wg.Wait()

	return spectrum
}

// MagnitudeSpectrum returns |X| for every frame of spectrum
func (s *STFT) MagnitudeSpectrum(spectrum [][]complex128) [][]float64 {
	return common.MagnitudeSpectrum(spectrum)
}

// AverageMagnitude returns the elementwise mean across frames
func (s *STFT) AverageMagnitude(magnitude [][]float64) []float64 {
	if len(magnitude) == 0 {
		return []float64{}
	}

	average := make([]float64, len(magnitude[0]))
	for _, frame := range magnitude {
		floats.Add(average, frame[:len(average)])
	}
	floats.Scale(1/float64(len(magnitude)), average)

	return average
}

// Reconstruct inverse-transforms each frame, applies the analysis window
// again and overlap-adds it at frame*hopSize into an N-sample buffer.
// Frame samples that would land past N are dropped.
func (s *STFT) Reconstruct(spectrum [][]complex128) []float64 {
	out := make([]float64, len(s.signal))

	for frame, bins := range spectrum {
		frameSignal := s.fft.Inverse(bins)
		start := frame * s.hopSize

		for i := 0; i < len(frameSignal) && i < s.windowSize; i++ {
			if start+i >= len(out) {
				break
			}
			out[start+i] += frameSignal[i] * s.window.Coefficient(i)
		}
	}

	return out
}

// ReduceNoise performs frame-wise spectral subtraction. The noise signal is
// resized to N and averaged across its frames into one magnitude profile;
// every signal bin keeps its phase while its magnitude is floored at zero:
//
//	new = max(0, |X| - profile[bin])
//
// With opts.BinIntervalHz > 0 the profile is first averaged over groups of
// bins spanning that interval. Bins left below opts.Threshold are zeroed.
func (s *STFT) ReduceNoise(noise []float64, opts SubtractionOptions) (*STFTNoiseReduction, error) {
	if len(noise) == 0 {
		return nil, common.EmptySignal("stft reduce noise")
	}

	profile := s.AverageMagnitude(s.MagnitudeSpectrum(s.FrameSpectrum(noise)))
	if opts.BinIntervalHz > 0 {
		profile = s.groupProfile(profile, opts.BinIntervalHz)
	}

	spectrum := s.Spectrum()
	cleaned := make([][]complex128, len(spectrum))
	magnitude := make([][]float64, len(spectrum))

	for frame, bins := range spectrum {
		cleaned[frame] = make([]complex128, len(bins))
		magnitude[frame] = make([]float64, len(bins))

		for bin, c := range bins {
			newMagnitude := math.Max(0, cmplx.Abs(c)-profile[bin])
			if newMagnitude < opts.Threshold {
				newMagnitude = 0
			}

			phase := math.Atan2(imag(c), real(c))
			cleaned[frame][bin] = cmplx.Rect(newMagnitude, phase)
			magnitude[frame][bin] = newMagnitude
		}
	}

	s.logger.Debug("STFT spectral subtraction applied", logging.Fields{
		"frames":      s.frameCount,
		"window_size": s.windowSize,
		"hop_size":    s.hopSize,
	})

	return &STFTNoiseReduction{
		Signal:    s.Reconstruct(cleaned),
		Spectrum:  cleaned,
		Magnitude: magnitude,
	}, nil
}

func (s *STFT) groupProfile(profile []float64, intervalHz float64) []float64 {
	width := BinWidth(intervalHz, s.FrequencyResolution())
	if width == 1 {
		return profile
	}

	grouped := make([]float64, len(profile))
	for start := 0; start < len(profile); start += width {
		end := min(start+width, len(profile))
		mean := floats.Sum(profile[start:end]) / float64(end-start)
		for i := start; i < end; i++ {
			grouped[i] = mean
		}
	}
	return grouped
}

// FrequencyResolution returns sampleRate/windowSize
func (s *STFT) FrequencyResolution() float64 {
	return float64(s.sampleRate) / float64(s.windowSize)
}

// FrequencyBins returns k*sampleRate/windowSize for every frame bin
func (s *STFT) FrequencyBins() []float64 {
	return LinearBins(s.windowSize, s.FrequencyResolution())
}

// TimeBins returns the start time in seconds of every frame
func (s *STFT) TimeBins() []float64 {
	times := make([]float64, s.frameCount)
	for frame := range times {
		times[frame] = float64(frame*s.hopSize) / float64(s.sampleRate)
	}
	return times
}

// FilterMagnitudeSpectrum keeps only the bins whose frequency lies in
// [minFrequency, maxFrequency]. It returns the kept bin frequencies and the
// filtered frames.
func FilterMagnitudeSpectrum(magnitude [][]float64, bins []float64, minFrequency, maxFrequency float64) ([]float64, [][]float64) {
	var keep []int
	for i, f := range bins {
		if f >= minFrequency && f <= maxFrequency {
			keep = append(keep, i)
		}
	}

	keptBins := make([]float64, len(keep))
	for i, idx := range keep {
		keptBins[i] = bins[idx]
	}

	filtered := make([][]float64, len(magnitude))
	for frame, values := range magnitude {
		filtered[frame] = make([]float64, 0, len(keep))
		for _, idx := range keep {
			if idx < len(values) {
				filtered[frame] = append(filtered[frame], values[idx])
			}
		}
	}

	return keptBins, filtered
}

// workerCount sizes the frame worker pool to the workload
func (s *STFT) workerCount() int {
	numCPU := runtime.NumCPU()

	if s.frameCount < 100 {
		return max(1, min(numCPU/2, s.frameCount))
	}
	if s.frameCount < 1000 {
		return min(numCPU, 8)
	}
	return numCPU
}
