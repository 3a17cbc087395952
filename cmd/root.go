package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-pulse/config"
	"github.com/RyanBlaney/sonido-pulse/logging"
)

const envPrefix = "SONIDO_PULSE"

var (
	configFile   string
	logLevel     string
	logFormat    string
	outputFormat string

	// cfg is loaded once flags are parsed
	cfg *config.Config
	// logger carries the run id of this invocation
	logger logging.Logger = &logging.NoOpLogger{}
)

// flagKeys maps flag names to their nested configuration keys
var flagKeys = map[string]string{
	"log-level":       "log_level",
	"log-format":      "log_format",
	"output":          "output_format",
	"window-size":     "analysis.window_size",
	"hop-size":        "analysis.hop_size",
	"pulse-width":     "analysis.pulse_width",
	"normalize":       "analysis.input.normalize",
	"remove-dc":       "analysis.input.remove_dc",
	"dc-cutoff":       "analysis.input.dc_cutoff_hz",
	"sample-offset":   "analysis.detection.sample_offset",
	"threshold":       "analysis.detection.threshold_multiplier",
	"min-gap":         "analysis.detection.min_gap_windows",
	"min-length":      "analysis.detection.min_pulse_length_windows",
	"noise-interval":  "analysis.noise_reduction.bin_interval_hz",
	"noise-threshold": "analysis.noise_reduction.threshold",
	"bin-interval":    "analysis.comparison.bin_interval_hz",
	"peaks":           "analysis.comparison.peak_count",
	"min-frequency":   "analysis.comparison.min_frequency",
	"max-frequency":   "analysis.comparison.max_frequency",
	"variant":         "analysis.comparison.variant",
	"bit-depth":       "analysis.output.bit_depth",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonido-pulse",
	Short: "Pulse detection and noise reduction for captured audio",
	Long: `Analyze captured WAV recordings of transient pulses.

sonido-pulse finds pulse onsets by window energy, isolates the background
noise between them, removes it by spectral subtraction and compares a
recording against a baseline in the frequency domain.

Configuration is read from flags, SONIDO_PULSE_* environment variables and
an optional YAML or JSON config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/sonido-pulse/sonido-pulse.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (table, json, yaml)")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sonido-pulse"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("sonido-pulse")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "error: failed to read config file: %v\n", err)
		os.Exit(1)
	}
}

// initializeConfig binds flags, loads and validates the configuration and
// installs the logger
func initializeConfig(cmd *cobra.Command) error {
	if err := bindFlags(cmd, viper.GetViper()); err != nil {
		return err
	}

	loaded, err := config.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	base, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logging.SetGlobalLogger(base)

	logger = base.WithFields(logging.Fields{
		"run_id":  uuid.NewString(),
		"command": cmd.Name(),
	})

	return nil
}

func newLogger(c *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(c.LogFormat, "json") {
		return logging.NewZapJSONLogger(level)
	}

	l := logging.NewDefaultLogger()
	l.SetLevel(level)
	return l, nil
}

// configKey returns the configuration key a flag is bound to
func configKey(flagName string) string {
	if key, ok := flagKeys[flagName]; ok {
		return key
	}
	return strings.ReplaceAll(flagName, "-", "_")
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	replacer := strings.NewReplacer("-", "_", ".", "_")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := configKey(f.Name)

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
			return
		}

		envVar := envPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(key, envVar); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
