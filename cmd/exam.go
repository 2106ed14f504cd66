package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/practice"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Generate a seeded exam simulation from a domain-weight policy",
	Long: `Generate a full exam rehearsal. The same seed, policy, history and
--now always produce the same exam.

The policy is taken from --policy-file, then --policy-version, then
EXAMCOACH_POLICY, and finally the newest policy in the catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		req := practice.ExamRequest{Seed: e.cfg.DefaultSeed}
		if v, _ := cmd.Flags().GetString("seed"); v != "" {
			req.Seed = v
		}
		req.PolicyVersion, _ = cmd.Flags().GetString("policy-version")

		policyPath, _ := cmd.Flags().GetString("policy-file")
		if policyPath == "" && req.PolicyVersion == "" {
			policyPath = e.cfg.PolicyPath
		}
		if policyPath != "" {
			p, err := catalog.LoadPolicyFile(policyPath)
			if err != nil {
				return fmt.Errorf("load policy: %w", err)
			}
			req.Policy = &p
		}

		plan, err := e.svc.Exam(cmd.Context(), req)
		if err != nil {
			return err
		}
		if done, err := e.emit(cmd.OutOrStdout(), plan); done {
			return err
		}
		items, _ := cmd.Flags().GetBool("items")
		e.out.Exam(plan, items)
		return nil
	},
}

func init() {
	examCmd.Flags().String("seed", "", "Seed for deterministic sampling (default from EXAMCOACH_SEED)")
	examCmd.Flags().String("policy-version", "", "Use the catalog policy with this version")
	examCmd.Flags().String("policy-file", "", "Use a policy YAML file instead of a catalog policy")
	examCmd.Flags().Bool("items", false, "List the selected questions")
}
