package cmd

import (
	"github.com/spf13/pflag"

	"github.com/RyanBlaney/sonido-pulse/config"
	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/signal"
	"github.com/RyanBlaney/sonido-pulse/transcode"
)

// loadRecording decodes the WAV file at path into a signal.Data carrying
// the analysis geometry
func loadRecording(path string, analysis config.AnalysisConfig, logger logging.Logger) (*signal.Data, error) {
	audio, err := transcode.NewDecoder(analysis.DecoderConfig()).DecodeFile(path)
	if err != nil {
		return nil, err
	}

	data := signal.New(audio.Signal, audio.SampleRate)
	data.Channels = audio.Channels
	data.SampleWidth = audio.SampleWidth
	data.RawBytes = audio.RawBytes
	data.PulseWidth = analysis.PulseWidth
	data.SetLogger(logger)

	if err := data.SetWindow(analysis.WindowSize, analysis.HopSize); err != nil {
		return nil, err
	}

	logger.Debug("Recording loaded", logging.Fields{
		"file":        path,
		"sample_rate": data.SampleRate,
		"samples":     data.NumberOfSamples(),
		"duration":    data.Duration(),
	})

	return data, nil
}

// addAnalysisFlags registers the window geometry and detection flags
// shared by the pipeline commands
func addAnalysisFlags(c *pflag.FlagSet) {
	d := config.DefaultAnalysisConfig()

	c.Int("window-size", d.WindowSize, "STFT and detection window size in samples")
	c.Int("hop-size", d.HopSize, "STFT hop size in samples")
	c.Int("pulse-width", d.PulseWidth, "pulse length in samples")
	c.Bool("normalize", d.Input.Normalize, "peak-normalize the decoded signal")
	c.Bool("remove-dc", d.Input.RemoveDC, "remove DC offset from the decoded signal")
	c.Float64("dc-cutoff", d.Input.DCCutoffHz, "DC blocker cutoff in Hz")
	c.Int("sample-offset", d.Detection.SampleOffset, "offset in samples applied to each detected onset")
	c.Float64("threshold", d.Detection.ThresholdMultiplier, "energy threshold as a multiple of the baseline window")
	c.Int("min-gap", d.Detection.MinGapWindows, "minimum gap in windows between pulses")
	c.Int("min-length", d.Detection.MinPulseLengthWindows, "minimum pulse length in windows")
}
