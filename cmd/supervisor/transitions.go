// cmd/supervisor/transitions.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamzrod/actuator-supervisor/internal/motion"
	"github.com/tamzrod/actuator-supervisor/internal/units"
)

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "Print the positions and transitions in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		table, err := motion.Build(cfg.Motion)
		if err != nil {
			return fmt.Errorf("motion table invalid: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "POSITION\tMETERS\tCOUNTS")
		for _, name := range table.PositionNames() {
			m, _ := table.Position(name)
			fmt.Fprintf(w, "%s\t%.3f\t%d\n", name, m, units.MetersToEncoderUnits(m))
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "TRANSITION\tSTART\tEND\tSPEED\tACCEL\tDECEL")
		for _, name := range table.Names() {
			t, _ := table.Transition(name)
			p := t.Profile.Or(table.Default())
			start := t.Start
			if start == "" {
				start = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				t.Name, start, t.End, p.Speed, p.Acceleration, p.Deceleration)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(transitionsCmd)
}
