package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	"github.com/KaramelBytes/healthaudit/internal/utils"
)

var (
	agesJSON  bool
	agesClean bool
)

var agesCmd = &cobra.Command{
	Use:   "ages <file>",
	Short: "Print the age frequency distribution",
	Long: `Counts each distinct age, ascending. Missing ages are skipped unless --clean
imputes them first.`,
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
		if t, err = env.cleanFirst(t, agesClean); err != nil {
			return err
		}
		dist, err := audit.AgeFrequencyDistribution(t)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if agesJSON {
			if dist == nil {
				dist = audit.Distribution{}
			}
			b, err := utils.PrettyJSON(dist)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		fmt.Fprintln(w, "age,count")
		for _, vc := range dist {
			fmt.Fprintf(w, "%s,%d\n", strconv.FormatFloat(vc.Value, 'f', -1, 64), vc.Count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agesCmd)
	agesCmd.Flags().BoolVar(&agesJSON, "json", false, "print JSON instead of CSV")
	agesCmd.Flags().BoolVar(&agesClean, "clean", false, "clean the table before counting")
}
