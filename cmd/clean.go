package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cleanOutput string

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Deduplicate, impute and normalize a patient table",
	Long: `Removes exact duplicate rows, fills missing age, BMI, blood_pressure and
disease_score values with the column mean and appends BMI_normalized and
disease_score_normalized. The cleaned table is written as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		t, err := env.loadTable(args[0])
		if err != nil {
			return err
		}
		p, err := env.pipeline()
		if err != nil {
			return err
		}
		out, rep, err := p.Cleaner.CleanWithReport(t)
		if err != nil {
			return err
		}
		env.log.WithFields(logrus.Fields{
			"rows_in":    rep.RowsIn,
			"rows_out":   rep.RowsOut,
			"duplicates": rep.DuplicatesRemoved,
			"imputed":    rep.Imputed(),
		}).Info("cleaned table")
		return env.writeTable(cmd, out, cleanOutput)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "path to write the cleaned CSV (default: stdout)")
}
