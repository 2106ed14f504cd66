package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "examcoach",
	Short: "Personalized exam-prep practice engine",
	Long: `examcoach scores objective mastery from your answer history, ranks
misconceptions, schedules spaced review and builds exam rehearsals from a
question catalog.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides EXAMCOACH_DB env var)")
	pf.String("catalog", "", "Catalog directory (overrides EXAMCOACH_CATALOG env var)")
	pf.String("env-file", ".env", "Optional .env file with EXAMCOACH_* settings")
	pf.String("now", "", "Evaluate as of this time (RFC3339 or YYYY-MM-DD)")
	pf.Bool("json", false, "Print results as JSON")
	pf.Bool("plain", false, "Disable colors")
	pf.String("log", "", "Log mode: dev, prod or quiet (overrides EXAMCOACH_LOG_MODE)")

	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(misconceptionsCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
