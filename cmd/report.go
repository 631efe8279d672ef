package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/report"
)

var (
	reportPredict bool
	reportRaw     bool
	reportWidth   int
)

var reportCmd = &cobra.Command{
	Use:   "report [roll-no]",
	Short: "Print a markdown risk report for a student",
	Long: `Build a markdown report of a student's metrics and, with --predict, the
dropout prediction with risk factors and interventions. The report is rendered
for the terminal unless --raw is given.

Examples:
  dropoutwatch report 2023CS101
  dropoutwatch report 2023CS101 --predict --raw > report.md`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()
		ctx := context.Background()

		var l *Lookup
		var err error
		if reportPredict {
			l, err = FetchPrediction(ctx, s, args[0])
		} else {
			l, err = FetchStudent(ctx, s, args[0])
		}
		if err != nil {
			HandleError(err, "Failed to build report")
		}

		md := report.Markdown(l.Student, l.Prediction)
		if reportRaw || RenderMarkdown == nil {
			fmt.Print(md)
			return
		}

		rendered, err := RenderMarkdown(md, reportWidth)
		if err != nil {
			// fall back to plain markdown
			fmt.Print(md)
			return
		}
		fmt.Print(rendered)
	},
}

func init() {
	reportCmd.Flags().BoolVarP(&reportPredict, "predict", "p", false, "Include the dropout prediction")
	reportCmd.Flags().BoolVar(&reportRaw, "raw", false, "Print markdown without terminal rendering")
	reportCmd.Flags().IntVarP(&reportWidth, "width", "w", 100, "Render width")
	rootCmd.AddCommand(reportCmd)
}
