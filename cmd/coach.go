package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/practice"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Recommend the next best practice activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		plan, err := e.svc.Next(cmd.Context())
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), plan); done {
			return err
		}
		e.out.Plan(plan)
		return nil
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Build a coaching plan for each of the weakest objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		plans, err := e.svc.PlansByObjective(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), plans); done {
			return err
		}
		e.out.Plans(plans)
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the balanced spaced-review queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		upcoming, _ := cmd.Flags().GetBool("upcoming")
		limit := e.cfg.QueueLimit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}
		entries, err := e.svc.Queue(cmd.Context(), practice.QueueRequest{
			IncludeUpcoming: upcoming,
			Limit:           limit,
		})
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), entries); done {
			return err
		}
		e.out.Queue(entries)
		return nil
	},
}

func init() {
	plansCmd.Flags().Int("limit", 5, "Number of weakest objectives to plan (0 for all)")
	queueCmd.Flags().Bool("upcoming", false, "Include cards that are not yet due")
	queueCmd.Flags().Int("limit", 0, "Maximum queue length (default from EXAMCOACH_QUEUE_LIMIT)")
}
