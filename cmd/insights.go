package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/mastery"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show objective mastery, weakest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rows, err := e.svc.Mastery(cmd.Context())
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		rows = mastery.SortedWeakest(rows, limit)
		if done, err := e.emit(cmd.OutOrStdout(), rows); done {
			return err
		}
		e.out.Mastery("Objective mastery", rows)
		return nil
	},
}

var misconceptionsCmd = &cobra.Command{
	Use:     "misconceptions",
	Aliases: []string{"mis"},
	Short:   "Rank misconceptions by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ps, err := e.svc.Misconceptions(cmd.Context())
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(ps) > limit {
			ps = ps[:limit]
		}
		if done, err := e.emit(cmd.OutOrStdout(), ps); done {
			return err
		}
		e.out.Misconceptions(ps)
		return nil
	},
}

func init() {
	masteryCmd.Flags().Int("limit", 0, "Show only the N weakest objectives")
	misconceptionsCmd.Flags().Int("limit", 0, "Show only the top N misconceptions")
}
