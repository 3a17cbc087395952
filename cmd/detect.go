package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-pulse/logging"
	"github.com/RyanBlaney/sonido-pulse/processing"
	"github.com/RyanBlaney/sonido-pulse/sidecar"
	"github.com/RyanBlaney/sonido-pulse/signal"
)

var detectSidecar string

var detectCmd = &cobra.Command{
	Use:   "detect [file.wav]",
	Short: "Detect pulse onsets and noise drops in a recording",
	Long: `Detect pulse onsets by comparing the energy of each window with the
energy of the first window.

Examples:
  sonido-pulse detect capture.wav
  sonido-pulse detect capture.wav --window-size 2048 --threshold 0.6
  sonido-pulse detect capture.wav --sidecar capture.json -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	addAnalysisFlags(detectCmd.Flags())
	detectCmd.Flags().StringVar(&detectSidecar, "sidecar", "",
		"write the decoded signal and detected indices to this JSON file")
}

// detectReport is the result of the detect command
type detectReport struct {
	File           string  `json:"file" yaml:"file"`
	SampleRate     int     `json:"sample_rate" yaml:"sample_rate"`
	Duration       float64 `json:"duration_seconds" yaml:"duration_seconds"`
	WindowSize     int     `json:"window_size" yaml:"window_size"`
	BaselineEnergy float64 `json:"baseline_energy" yaml:"baseline_energy"`
	Pulses         []int   `json:"pulse_sample_indices" yaml:"pulse_sample_indices"`
	NoiseDrops     []int   `json:"noise_drop_sample_indices" yaml:"noise_drop_sample_indices"`

	Signal signal.Stats `json:"signal" yaml:"signal"`
}

func (r *detectReport) headers() []string {
	return []string{"event", "sample_index", "time_seconds"}
}

func (r *detectReport) rows() [][]string {
	rows := make([][]string, 0, len(r.Pulses)+len(r.NoiseDrops))
	for _, idx := range r.Pulses {
		rows = append(rows, r.row("pulse", idx))
	}
	for _, idx := range r.NoiseDrops {
		rows = append(rows, r.row("noise drop", idx))
	}
	return rows
}

func (r *detectReport) row(event string, idx int) []string {
	seconds := 0.0
	if r.SampleRate > 0 {
		seconds = float64(idx) / float64(r.SampleRate)
	}
	return []string{event, strconv.Itoa(idx), formatFloat(seconds)}
}

func newDetectReport(path string, data *signal.Data, result *processing.DetectionResult) *detectReport {
	return &detectReport{
		File:           path,
		SampleRate:     data.SampleRate,
		Duration:       data.Duration(),
		WindowSize:     data.WindowSize(),
		BaselineEnergy: result.BaselineEnergy,
		Pulses:         nonNilIndices(result.PulseSampleIndices),
		NoiseDrops:     nonNilIndices(result.NoiseDropSampleIndices),
		Signal:         data.Stats(),
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := loadRecording(path, cfg.Analysis, logger)
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}

	processor := processing.NewProcessor(data, logger)
	result, err := processor.DetectPulses(cfg.Analysis.DetectionParams())
	if err != nil {
		return err
	}

	if detectSidecar != "" {
		if err := writeSidecar(detectSidecar, data); err != nil {
			return err
		}
	}

	return writeReport(cmd.OutOrStdout(), cfg.OutputFormat, newDetectReport(path, data, result))
}

// writeSidecar merges data into the JSON side-car file at path
func writeSidecar(path string, data *signal.Data) error {
	store, err := sidecar.Open(path)
	if err != nil {
		return err
	}
	if err := store.WriteData(data); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}

	logger.Info("Side-car written", logging.Fields{"path": store.Path()})
	return nil
}

func nonNilIndices(indices []int) []int {
	if indices == nil {
		return []int{}
	}
	return indices
}
