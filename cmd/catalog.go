package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/logger"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the question catalog",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the catalog and report dropped entries (no database)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, issues, err := openCatalog(cfg, logger.Nop())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			err = writeJSON(out, map[string]any{
				"domains":    len(cat.Domains()),
				"objectives": len(cat.Objectives()),
				"questions":  len(cat.Questions()),
				"sections":   len(cat.Sections()),
				"policies":   len(cat.Policies()),
				"issues":     issues,
			})
			if err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%d domains, %d objectives, %d questions, %d sections, %d policies\n",
				len(cat.Domains()), len(cat.Objectives()), len(cat.Questions()),
				len(cat.Sections()), len(cat.Policies()))
			for _, is := range issues {
				fmt.Fprintln(out, is.String())
			}
			fmt.Fprintf(out, "%d issues\n", len(issues))
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(issues) > 0 {
			return fmt.Errorf("catalog has %d issues", len(issues))
		}
		return nil
	},
}

func init() {
	catalogCheckCmd.Flags().Bool("strict", false, "Exit non-zero when any issue is found")
	catalogCmd.AddCommand(catalogCheckCmd)
}
