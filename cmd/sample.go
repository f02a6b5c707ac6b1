package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/audit"
)

var (
	smpOutput string
	smpCount  int
	smpSeed   int64
	smpClean  bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample <file>",
	Short: "Draw a reproducible random sample of rows",
	Long: `Draws --count rows without replacement using --seed. The same file, count and seed
always produce the same rows in the same order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		n, seed := env.cfg.SampleSize, env.cfg.SampleSeed
		if cmd.Flags().Changed("count") {
			n = smpCount
		}
		if cmd.Flags().Changed("seed") {
			seed = smpSeed
		}
		t, err := env.loadTable(args[0])
		if err != nil {
			return err
		}
		if t, err = env.cleanFirst(t, smpClean); err != nil {
			return err
		}
		out, err := audit.Sample(t, n, seed)
		if err != nil {
			return err
		}
		return env.writeTable(cmd, out, smpOutput)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&smpOutput, "output", "o", "", "path to write the sample CSV (default: stdout)")
	sampleCmd.Flags().IntVarP(&smpCount, "count", "n", audit.DefaultSampleSize, "number of rows to draw (overrides config)")
	sampleCmd.Flags().Int64Var(&smpSeed, "seed", audit.DefaultSeed, "random seed (overrides config)")
	sampleCmd.Flags().BoolVar(&smpClean, "clean", false, "clean the table before sampling")
}
