package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/analysis"
	"github.com/KaramelBytes/healthaudit/internal/utils"
)

var (
	prfOutput     string
	prfSampleRows int
	prfOutliers   bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Summarize columns of a patient table as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.SampleRows = env.cfg.ReportSampleRows
		opt.OutlierThreshold = env.cfg.OutlierThreshold
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = prfSampleRows
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = prfOutliers
		}
		t, err := env.loadTable(args[0])
		if err != nil {
			return err
		}
		md := analysis.Profile(filepath.Base(args[0]), t, opt).Markdown()
		if prfOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(prfOutput, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", prfOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&prfOutput, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&prfSampleRows, "sample-rows", 5, "number of sample rows to include (overrides config)")
	profileCmd.Flags().BoolVar(&prfOutliers, "outliers", true, "compute robust outlier counts (MAD)")
}
