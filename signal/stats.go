package signal

import (
	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
)

// Stats summarizes the time-domain signal
type Stats struct {
	Samples    int     `json:"samples" yaml:"samples"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Duration   float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Mean       float64 `json:"mean" yaml:"mean"`
	Variance   float64 `json:"variance" yaml:"variance"`
	RMS        float64 `json:"rms" yaml:"rms"`
	Peak       float64 `json:"peak" yaml:"peak"`
}

// Stats computes summary statistics of the current signal
func (d *Data) Stats() Stats {
	return Stats{
		Samples:    len(d.timeDomain),
		SampleRate: d.SampleRate,
		Duration:   d.Duration(),
		Mean:       common.Mean(d.timeDomain),
		Variance:   common.Variance(d.timeDomain),
		RMS:        common.RMS(d.timeDomain),
		Peak:       common.MaxAbs(d.timeDomain),
	}
}
