package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/healthaudit/internal/config"
	"github.com/KaramelBytes/healthaudit/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Input/logging flags (override config if set)
	flagDelimiter string
	flagDecimal   string
	flagLogFormat string
	flagSheetName string
	flagSheetIdx  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "healthaudit",
	Short: "Clean patient tables and flag advisory risk labels",
	Long: `healthaudit deduplicates and imputes tabular patient data, adds min-max normalized
BMI and disease score columns and labels every row Critical or Stable with a
two-threshold rule. Labels are advisory and support clinical audit work only.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.healthaudit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text | json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator: '.' | 'comma' | 'auto' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to read")
	rootCmd.PersistentFlags().IntVar(&flagSheetIdx, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands report the error when they need settings
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
		case "comma":
			cfg.Decimal = ","
		case "dot":
			cfg.Decimal = "."
		default:
			cfg.Decimal = flagDecimal
		}
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// settings returns the loaded configuration, validating any flag overrides.
func settings() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger. Logs go to stderr so stdout stays
// usable for table output.
func newLogger(cmd *cobra.Command, c *cfgpkg.Global) (*logrus.Logger, error) {
	return logging.New(c.LogLevel, c.LogFormat, cmd.ErrOrStderr())
}
