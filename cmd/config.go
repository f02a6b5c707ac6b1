package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	cfgpkg "github.com/KaramelBytes/healthaudit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set healthaudit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		fmt.Fprintf(w, "sample_size: %d\n", cfg.SampleSize)
		fmt.Fprintf(w, "sample_seed: %d\n", cfg.SampleSeed)
		fmt.Fprintf(w, "disease_threshold: %g\n", cfg.DiseaseThreshold)
		fmt.Fprintf(w, "bmi_threshold: %g\n", cfg.BMIThreshold)
		fmt.Fprintf(w, "degenerate_range: %s\n", cfg.DegenerateRange)
		fmt.Fprintf(w, "missing_markers: %s\n", quoteAll(cfg.MissingMarkers))
		if cfg.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(w, "decimal: %q\n", cfg.Decimal)
		if cfg.OutputDir != "" {
			fmt.Fprintf(w, "output_dir: %s\n", cfg.OutputDir)
		}
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(w, "report_sample_rows: %d\n", cfg.ReportSampleRows)
		fmt.Fprintf(w, "outlier_threshold: %g\n", cfg.OutlierThreshold)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "sample_size":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sample_size: %v", val)
			}
			cfg.SampleSize = i
		case "sample_seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for sample_seed: %w", err)
			}
			cfg.SampleSeed = i
		case "disease_threshold", "bmi_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid float for %s: %v (must be within [0,1])", key, val)
			}
			if key == "disease_threshold" {
				cfg.DiseaseThreshold = f
			} else {
				cfg.BMIThreshold = f
			}
		case "degenerate_range":
			p, err := audit.ParseDegeneratePolicy(val)
			if err != nil {
				return err
			}
			cfg.DegenerateRange = p.String()
		case "missing_markers":
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			cfg.MissingMarkers = parts
		case "delimiter":
			cfg.Delimiter = val
		case "decimal":
			cfg.Decimal = val
		case "output_dir":
			cfg.OutputDir = val
		case "log_level":
			cfg.LogLevel = val
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "report_sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for report_sample_rows: %v", val)
			}
			cfg.ReportSampleRows = i
		case "outlier_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for outlier_threshold: %v", val)
			}
			cfg.OutlierThreshold = f
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
