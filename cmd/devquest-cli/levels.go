package main

import (
	"fmt"
	"text/tabwriter"

	"devquest/internal/core/level"

	"github.com/spf13/cobra"
)

func levelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Print the level table of the active rule set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := loadRules()
			if err != nil {
				return err
			}
			t, err := level.FromRules(rules)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tXP\tTITLE")
			for _, s := range t.Steps() {
				fmt.Fprintf(w, "%d\t%d\t%s\n", s.Level, s.XPRequired, s.Title)
			}
			return w.Flush()
		},
	}
}
