package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/coaching"
	"github.com/abhisek/examcoach/internal/examsim"
	"github.com/abhisek/examcoach/internal/practice"
	"github.com/abhisek/examcoach/internal/store"
)

var lastCmd = &cobra.Command{
	Use:       "last [coaching|exam]",
	Short:     "Show the most recently generated plan",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{practice.KindCoaching, practice.KindExam},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := practice.KindCoaching
		if len(args) == 1 {
			kind = args[0]
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		echo, err := e.svc.LastPlan(cmd.Context(), kind)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no %s plan has been generated yet", kind)
		}
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), echo); done {
			return err
		}

		e.out.Echo(echo)
		switch kind {
		case practice.KindExam:
			var plan examsim.Plan
			if err := echo.Decode(&plan); err != nil {
				return err
			}
			items, _ := cmd.Flags().GetBool("items")
			e.out.Exam(plan, items)
		default:
			var plan coaching.Plan
			if err := echo.Decode(&plan); err != nil {
				return err
			}
			e.out.Plan(plan)
		}
		return nil
	},
}

func init() {
	lastCmd.Flags().Bool("items", false, "List the questions of an exam plan")
}
