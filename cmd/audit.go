package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/analysis"
	"github.com/KaramelBytes/healthaudit/internal/utils"
)

var (
	audOutput     string
	audReport     string
	audJSON       bool
	audSampleSize int
	audSeed       int64
	audNoWrite    bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Run the full clean and classify pipeline and report on it",
	Long: `Cleans the table, labels every row Critical or Stable and writes the classified
table next to the input (or to --output). A report covering cleaning, risk
counts, the age distribution, a column profile and a reproducible random sample
is printed as Markdown, or as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.pipeline()
		if err != nil {
			return err
		}
		opt := analysis.DefaultAuditOptions()
		opt.SampleSize, opt.SampleSeed = env.cfg.SampleSize, env.cfg.SampleSeed
		opt.Profile.SampleRows = env.cfg.ReportSampleRows
		opt.Profile.OutlierThreshold = env.cfg.OutlierThreshold
		if cmd.Flags().Changed("sample") {
			opt.SampleSize = audSampleSize
		}
		if cmd.Flags().Changed("seed") {
			opt.SampleSeed = audSeed
		}

		input := args[0]
		raw, err := env.loadTable(input)
		if err != nil {
			return err
		}
		rep, classified, err := analysis.BuildAudit(filepath.Base(input), raw, p, opt)
		if err != nil {
			return err
		}
		env.log.WithFields(logrus.Fields{
			"run_id":   rep.RunID,
			"rows":     classified.Len(),
			"critical": rep.Risk.Critical,
			"stable":   rep.Risk.Stable,
		}).Info("audit complete")
		for _, w := range rep.Warnings {
			env.log.WithField("run_id", rep.RunID).Warn(w)
		}

		if !audNoWrite {
			out, err := env.outputFor(input, audOutput, ".audited.csv")
			if err != nil {
				return err
			}
			if err := env.writeTable(cmd, classified, out); err != nil {
				return err
			}
		}

		var body []byte
		if audJSON {
			if body, err = rep.JSON(); err != nil {
				return err
			}
			body = append(body, '\n')
		} else {
			body = []byte(rep.Markdown())
		}
		if audReport == "" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := utils.SafeWriteFile(audReport, body); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", audReport)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVarP(&audOutput, "output", "o", "", "path for the classified CSV (default: <input>.audited.csv in output_dir)")
	auditCmd.Flags().StringVar(&audReport, "report", "", "optional path to write the report (default: stdout)")
	auditCmd.Flags().BoolVar(&audJSON, "json", false, "render the report as JSON")
	auditCmd.Flags().IntVar(&audSampleSize, "sample", 0, "rows in the report sample, 0 disables it (overrides config)")
	auditCmd.Flags().Int64Var(&audSeed, "seed", 0, "seed for the report sample (overrides config)")
	auditCmd.Flags().BoolVar(&audNoWrite, "no-write", false, "only print the report, do not write the classified CSV")
}
