package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cohortSQL string

var cohortCmd = &cobra.Command{
	Use:   "cohort [roll-no...]",
	Short: "Summarize risk across a group of students",
	Long: `Load students into an in-memory DuckDB table and summarize them: averages,
how many students fall in each severity tier per metric, and who has at least
one metric in the danger tier. Without roll numbers every student the backend
lists is loaded. Nothing is written to disk.

With --sql the given query runs against the "cohort" table instead. Columns:
roll_no, name, course, attendance, attendance_level, cgpa, cgpa_level,
cgpa_delta, cgpa_direction, assignment_pct, assignment_level, login_days,
login_flag, library_flag, participation_flag, fee_flag, counselor_flag.

Examples:
  dropoutwatch cohort
  dropoutwatch cohort 2023CS101 2023CS102 2023CS103
  dropoutwatch cohort --sql "SELECT course, AVG(attendance) FROM cohort GROUP BY course"`,
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()
		ctx := context.Background()

		if cohortSQL == "" {
			result, err := SummarizeCohort(ctx, s, args)
			if err != nil {
				HandleError(err, "Failed to summarize cohort")
			}
			printJSON(result)
			return
		}

		cohort, cleanup, err := InitCohort(s)
		if err != nil {
			HandleError(err, "Failed to initialize cohort store")
		}
		defer cleanup()

		loaded, failed, err := LoadCohort(ctx, s, cohort, args)
		if err != nil {
			HandleError(err, "Failed to load cohort")
		}
		for roll, msg := range failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %s\n", roll, msg)
		}
		if loaded == 0 {
			HandleError(fmt.Errorf("no students loaded"), "Empty cohort")
		}

		rows, err := cohort.ExecuteQuery(cohortSQL)
		if err != nil {
			HandleError(err, "Failed to execute query")
		}
		printJSON(rows)
	},
}

func init() {
	cohortCmd.Flags().StringVarP(&cohortSQL, "sql", "q", "", "SQL query to run against the cohort table")
	rootCmd.AddCommand(cohortCmd)
}
