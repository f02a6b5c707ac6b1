package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	"github.com/KaramelBytes/healthaudit/internal/dataset"
	"github.com/KaramelBytes/healthaudit/internal/logging"
)

// Global configuration structure.
type Global struct {
	// Sampling
	SampleSize int   `mapstructure:"sample_size" yaml:"sample_size"`
	SampleSeed int64 `mapstructure:"sample_seed" yaml:"sample_seed"`

	// Classification and cleaning
	DiseaseThreshold float64 `mapstructure:"disease_threshold" yaml:"disease_threshold"`
	BMIThreshold     float64 `mapstructure:"bmi_threshold" yaml:"bmi_threshold"`
	DegenerateRange  string  `mapstructure:"degenerate_range" yaml:"degenerate_range"`

	// Input parsing
	MissingMarkers []string `mapstructure:"missing_markers" yaml:"missing_markers"`
	Delimiter      string   `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal        string   `mapstructure:"decimal" yaml:"decimal"`

	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Report
	ReportSampleRows int     `mapstructure:"report_sample_rows" yaml:"report_sample_rows"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
}

// Dir returns ~/.healthaudit.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".healthaudit"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.healthaudit/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HEALTHAUDIT")
	v.AutomaticEnv()

	v.SetDefault("sample_size", audit.DefaultSampleSize)
	v.SetDefault("sample_seed", audit.DefaultSeed)
	v.SetDefault("disease_threshold", audit.DefaultThreshold)
	v.SetDefault("bmi_threshold", audit.DefaultThreshold)
	v.SetDefault("degenerate_range", audit.DegenerateError.String())
	v.SetDefault("missing_markers", dataset.DefaultMissingMarkers)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", ".")
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("report_sample_rows", 5)
	v.SetDefault("outlier_threshold", 3.5)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file is fine, a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Global) Validate() error {
	if c.SampleSize < 0 {
		return fmt.Errorf("invalid sample_size: %d (must be >= 0)", c.SampleSize)
	}
	if c.DiseaseThreshold < 0 || c.DiseaseThreshold > 1 {
		return fmt.Errorf("invalid disease_threshold: %g (must be within [0,1])", c.DiseaseThreshold)
	}
	if c.BMIThreshold < 0 || c.BMIThreshold > 1 {
		return fmt.Errorf("invalid bmi_threshold: %g (must be within [0,1])", c.BMIThreshold)
	}
	if _, err := audit.ParseDegeneratePolicy(c.DegenerateRange); err != nil {
		return err
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := c.DecimalRune(); err != nil {
		return err
	}
	if _, err := logging.New(c.LogLevel, c.LogFormat, io.Discard); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the configured field delimiter, 0 for "sniff by extension".
func (c *Global) DelimiterRune() (rune, error) {
	return parseSeparator("delimiter", c.Delimiter)
}

// DecimalRune returns the configured decimal separator, 0 for "auto-detect".
func (c *Global) DecimalRune() (rune, error) {
	if c.Decimal == "auto" {
		return 0, nil
	}
	return parseSeparator("decimal", c.Decimal)
}

func parseSeparator(key, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid %s: %q (must be a single character)", key, s)
	}
	return r[0], nil
}

// CSVOptions builds the reader options for input files.
func (c *Global) CSVOptions() dataset.CSVOptions {
	opt := dataset.DefaultCSVOptions()
	opt.Delimiter, _ = c.DelimiterRune()
	opt.DecimalSeparator, _ = c.DecimalRune()
	if c.MissingMarkers != nil {
		opt.MissingMarkers = c.MissingMarkers
	}
	return opt
}

// Pipeline builds the audit pipeline described by the configuration.
func (c *Global) Pipeline() (audit.Pipeline, error) {
	policy, err := audit.ParseDegeneratePolicy(c.DegenerateRange)
	if err != nil {
		return audit.Pipeline{}, err
	}
	return audit.Pipeline{
		Cleaner:    audit.Cleaner{Degenerate: policy},
		Classifier: audit.ThresholdClassifier{DiseaseThreshold: c.DiseaseThreshold, BMIThreshold: c.BMIThreshold},
	}, nil
}
