package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeQuery string

var summarizeCmd = &cobra.Command{
	Use:   "summarize [roll-no...]",
	Short: "Compute column statistics over a cohort",
	Long: `Load students into the in-memory cohort table and run DuckDB's SUMMARIZE
over it: min, max, approx_unique, avg, std, q25, q50, q75, count and the
percentage of NULL values for every column. Quantiles are approximate.

Without roll numbers every student the backend lists is loaded. Pass --query to
summarize a query over the cohort table instead of the whole table.

Examples:
  dropoutwatch summarize
  dropoutwatch summarize --query "SELECT attendance, cgpa FROM cohort WHERE course = 'CSE'"`,
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()

		cohort, cleanup, err := InitCohort(s)
		if err != nil {
			HandleError(err, "Failed to initialize cohort store")
		}
		defer cleanup()

		loaded, failed, err := LoadCohort(context.Background(), s, cohort, args)
		if err != nil {
			HandleError(err, "Failed to load cohort")
		}
		for roll, msg := range failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %s\n", roll, msg)
		}
		if loaded == 0 {
			HandleError(fmt.Errorf("no students loaded"), "Empty cohort")
		}

		rows, err := cohort.ExecuteQuery(buildSummarizeQuery(summarizeQuery))
		if err != nil {
			HandleError(err, "Failed to execute summarize query")
		}

		printJSON(rows)
	},
}

// buildSummarizeQuery wraps a query for SUMMARIZE, defaulting to the table
func buildSummarizeQuery(query string) string {
	if query == "" {
		return "SUMMARIZE cohort"
	}
	return fmt.Sprintf("SUMMARIZE (%s)", query)
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeQuery, "query", "q", "", "Query over the cohort table to summarize")
	rootCmd.AddCommand(summarizeCmd)
}
