package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/normalize"
)

var (
	studentRaw       bool
	studentCanonical bool
)

var studentCmd = &cobra.Command{
	Use:   "student [roll-no]",
	Short: "Get a student's profile and engagement metrics",
	Long: `Look up a student by roll number and print the normalized view as JSON:
profile fields, attendance, CGPA with trend, assignment completion and the
engagement statuses, each with its severity.

Use --canonical for the flat canonical field map, or --raw for the record
exactly as the backend returned it.

Example:
  dropoutwatch student 2023CS101`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()

		l, err := FetchStudent(context.Background(), s, args[0])
		if err != nil {
			HandleError(err, "Failed to get student")
		}

		switch {
		case studentRaw:
			printJSON(l.Record)
		case studentCanonical:
			printJSON(normalize.Canonical(l.Record, normalize.StudentFields))
		default:
			printJSON(l.Student)
		}
	},
}

func init() {
	studentCmd.Flags().BoolVar(&studentRaw, "raw", false, "Print the backend record unmodified")
	studentCmd.Flags().BoolVar(&studentCanonical, "canonical", false, "Print the canonical field map")
	studentCmd.MarkFlagsMutuallyExclusive("raw", "canonical")
	rootCmd.AddCommand(studentCmd)
}
