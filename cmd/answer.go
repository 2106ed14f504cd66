package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/practice"
)

var answerCmd = &cobra.Command{
	Use:   "answer ITEM_ID",
	Short: "Record an answer and update mastery and review state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, _ := cmd.Flags().GetBool("correct")
		wrong, _ := cmd.Flags().GetBool("wrong")
		switch {
		case correct && wrong:
			return fmt.Errorf("use --correct or --wrong, not both")
		case !correct && !wrong:
			return fmt.Errorf("one of --correct or --wrong is required")
		}
		unsure, _ := cmd.Flags().GetBool("unsure")
		session, _ := cmd.Flags().GetString("session")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.svc.SubmitAnswer(cmd.Context(), practice.Answer{
			ItemID:    args[0],
			Correct:   correct,
			Unsure:    unsure,
			SessionID: session,
		})
		if errors.Is(err, practice.ErrUnknownItem) {
			return fmt.Errorf("%w (check the id with `examcoach catalog check`)", err)
		}
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), res); done {
			return err
		}
		e.out.Answer(res)
		return nil
	},
}

func init() {
	answerCmd.Flags().Bool("correct", false, "The answer was correct")
	answerCmd.Flags().Bool("wrong", false, "The answer was wrong")
	answerCmd.Flags().Bool("unsure", false, "The learner was unsure")
	answerCmd.Flags().String("session", "", "Append to an existing review session")
}
