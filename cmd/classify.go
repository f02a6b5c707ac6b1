package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/audit"
)

var (
	clsOutput  string
	clsDisease float64
	clsBMI     float64
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Label each row of a cleaned table Critical or Stable",
	Long: `Adds risk_status to a table that already carries BMI_normalized and
disease_score_normalized (the output of "healthaudit clean"). A row is Critical
when both normalized values are strictly above their thresholds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		c := audit.ThresholdClassifier{DiseaseThreshold: env.cfg.DiseaseThreshold, BMIThreshold: env.cfg.BMIThreshold}
		if cmd.Flags().Changed("disease") {
			c.DiseaseThreshold = clsDisease
		}
		if cmd.Flags().Changed("bmi") {
			c.BMIThreshold = clsBMI
		}
		if c.DiseaseThreshold < 0 || c.DiseaseThreshold > 1 || c.BMIThreshold < 0 || c.BMIThreshold > 1 {
			return fmt.Errorf("thresholds must be within [0,1]: disease=%g bmi=%g", c.DiseaseThreshold, c.BMIThreshold)
		}
		t, err := env.loadTable(args[0])
		if err != nil {
			return err
		}
		out, err := c.Classify(t)
		if err != nil {
			return err
		}
		sum, err := audit.SummarizeRisk(out)
		if err != nil {
			return err
		}
		env.log.WithFields(logrus.Fields{"critical": sum.Critical, "stable": sum.Stable}).Info("classified table")
		return env.writeTable(cmd, out, clsOutput)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVarP(&clsOutput, "output", "o", "", "path to write the classified CSV (default: stdout)")
	classifyCmd.Flags().Float64Var(&clsDisease, "disease", audit.DefaultThreshold, "disease_score_normalized threshold (overrides config)")
	classifyCmd.Flags().Float64Var(&clsBMI, "bmi", audit.DefaultThreshold, "BMI_normalized threshold (overrides config)")
}
