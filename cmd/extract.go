package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/RyanBlaney/sonido-pulse/processing"
)

var (
	extractOutDir   string
	extractBaseName string
)

var extractCmd = &cobra.Command{
	Use:   "extract [file.wav]",
	Short: "Write every detected pulse to its own WAV file",
	Long: `Detect pulses and write pulse-width samples starting at each onset
to <out-dir>/<base-name>_<i>.wav.

Examples:
  sonido-pulse extract capture.wav --pulse-width 4410
  sonido-pulse extract capture.wav --pulse-width 4410 --out-dir pulses --base-name shot`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addAnalysisFlags(extractCmd.Flags())
	addOutputFlags(extractCmd.Flags())
	extractCmd.Flags().StringVar(&extractOutDir, "out-dir", ".",
		"directory the pulse files are written to")
	extractCmd.Flags().StringVar(&extractBaseName, "base-name", "",
		"pulse file name prefix (default is the input file name)")
}

// addOutputFlags registers the WAV output flags
func addOutputFlags(f *pflag.FlagSet) {
	f.Int("bit-depth", 0, "bit depth of written WAV files (0 keeps the input width)")
}

// pulseFile describes one extracted pulse
type pulseFile struct {
	Index       int    `json:"index" yaml:"index"`
	StartSample int    `json:"start_sample" yaml:"start_sample"`
	Samples     int    `json:"samples" yaml:"samples"`
	Path        string `json:"path" yaml:"path"`
}

// extractReport is the result of the extract command
type extractReport struct {
	Input  string      `json:"input" yaml:"input"`
	Pulses []pulseFile `json:"pulses" yaml:"pulses"`
}

func (r *extractReport) headers() []string {
	return []string{"index", "start_sample", "samples", "path"}
}

func (r *extractReport) rows() [][]string {
	rows := make([][]string, len(r.Pulses))
	for i, p := range r.Pulses {
		rows[i] = []string{strconv.Itoa(p.Index), strconv.Itoa(p.StartSample), strconv.Itoa(p.Samples), p.Path}
	}
	return rows
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := loadRecording(path, cfg.Analysis, logger)
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}

	processor := processing.NewProcessor(data, logger)
	processor.SetBitDepth(cfg.Analysis.Output.BitDepth)

	if _, err := processor.DetectPulses(cfg.Analysis.DetectionParams()); err != nil {
		return err
	}

	if err := os.MkdirAll(extractOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	baseName := extractBaseName
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	paths, err := processor.SavePulses(extractOutDir, baseName)
	if err != nil {
		return err
	}

	out := &extractReport{Input: path, Pulses: make([]pulseFile, 0, len(paths))}
	starts := pulseStarts(data.PulseSampleIndices, data.NumberOfSamples(), data.PulseWidth)
	for i, written := range paths {
		pulse := processor.Pulses()[i]
		out.Pulses = append(out.Pulses, pulseFile{
			Index:       i,
			StartSample: starts[i],
			Samples:     pulse.NumberOfSamples(),
			Path:        written,
		})
	}

	return writeReport(cmd.OutOrStdout(), cfg.OutputFormat, out)
}

// pulseStarts returns the clipped start of every pulse that overlaps the
// signal, in the order the processor extracts them
func pulseStarts(indices []int, n, width int) []int {
	starts := make([]int, 0, len(indices))
	for _, start := range indices {
		from := max(start, 0)
		if from >= min(start+width, n) {
			continue
		}
		starts = append(starts, from)
	}
	return starts
}
