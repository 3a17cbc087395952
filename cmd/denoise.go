package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-pulse/algorithms/common"
	"github.com/RyanBlaney/sonido-pulse/config"
	"github.com/RyanBlaney/sonido-pulse/processing"
)

var (
	denoiseOut     string
	denoiseSidecar string
)

var denoiseCmd = &cobra.Command{
	Use:   "denoise [file.wav]",
	Short: "Remove the background noise between pulses",
	Long: `Detect pulses, collect the samples outside every pulse and noise drop
as a noise profile and remove it from the recording by spectral subtraction.

A positive --pulse-width is needed so the pulses can be excluded from the
noise profile.

Examples:
  sonido-pulse denoise capture.wav --pulse-width 4410
  sonido-pulse denoise capture.wav --pulse-width 4410 --out clean.wav --bit-depth 24
  sonido-pulse denoise capture.wav --pulse-width 4410 --noise-interval 50`,
	Args: cobra.ExactArgs(1),
	RunE: runDenoise,
}

func init() {
	rootCmd.AddCommand(denoiseCmd)

	addAnalysisFlags(denoiseCmd.Flags())
	addOutputFlags(denoiseCmd.Flags())
	d := config.DefaultAnalysisConfig().NoiseReduction
	denoiseCmd.Flags().Float64("noise-interval", d.BinIntervalHz,
		"group the noise profile in bins of this width in Hz (0 uses native bins)")
	denoiseCmd.Flags().Float64("noise-threshold", d.Threshold,
		"zero denoised bins whose magnitude falls below this value")
	denoiseCmd.Flags().StringVar(&denoiseOut, "out", "",
		"output WAV path (default is <input>_denoised.wav)")
	denoiseCmd.Flags().StringVar(&denoiseSidecar, "sidecar", "",
		"write the signal, indices and denoised signal to this JSON file")
}

// denoiseReport is the result of the denoise command
type denoiseReport struct {
	Input        string  `json:"input" yaml:"input"`
	Output       string  `json:"output" yaml:"output"`
	Pulses       int     `json:"pulses" yaml:"pulses"`
	NoiseSamples int     `json:"noise_samples" yaml:"noise_samples"`
	Frames       int     `json:"frames" yaml:"frames"`
	InputRMS     float64 `json:"input_rms" yaml:"input_rms"`
	OutputRMS    float64 `json:"output_rms" yaml:"output_rms"`
}

func (r *denoiseReport) headers() []string {
	return []string{"property", "value"}
}

func (r *denoiseReport) rows() [][]string {
	return [][]string{
		{"input", r.Input},
		{"output", r.Output},
		{"pulses", strconv.Itoa(r.Pulses)},
		{"noise samples", strconv.Itoa(r.NoiseSamples)},
		{"frames", strconv.Itoa(r.Frames)},
		{"input rms", formatFloat(r.InputRMS)},
		{"output rms", formatFloat(r.OutputRMS)},
	}
}

func runDenoise(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := loadRecording(path, cfg.Analysis, logger)
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}
	if data.PulseWidth <= 0 {
		return common.InvalidConfiguration("denoise", "pulse width must be positive, got %d", data.PulseWidth)
	}
	inputRMS := common.RMS(data.TimeDomainSignal())

	processor := processing.NewProcessor(data, logger)
	processor.SetBitDepth(cfg.Analysis.Output.BitDepth)

	result, err := processor.DetectPulses(cfg.Analysis.DetectionParams())
	if err != nil {
		return err
	}

	reduction, err := processor.ReduceNoise(cfg.Analysis.SubtractionOptions())
	if err != nil {
		return err
	}

	out := denoiseOut
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_denoised"
	}
	written, err := processor.SaveSignal(out, reduction.Signal)
	if err != nil {
		return fmt.Errorf("failed to write denoised signal: %w", err)
	}

	if denoiseSidecar != "" {
		if err := writeSidecar(denoiseSidecar, data); err != nil {
			return err
		}
	}

	return writeReport(cmd.OutOrStdout(), cfg.OutputFormat, &denoiseReport{
		Input:        path,
		Output:       written,
		Pulses:       len(result.PulseSampleIndices),
		NoiseSamples: processor.Noise().NumberOfSamples(),
		Frames:       len(reduction.Spectrum),
		InputRMS:     inputRMS,
		OutputRMS:    common.RMS(reduction.Signal),
	})
}
