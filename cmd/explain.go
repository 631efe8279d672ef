package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var explainRaw bool

var explainCmd = &cobra.Command{
	Use:   "explain [roll-no]",
	Short: "Explain a student's dropout prediction in plain language",
	Long: `Request a prediction for a student and ask Claude to explain it for a
counselor: the overall risk, its strongest drivers and where to start with the
recommended interventions.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  dropoutwatch explain 2023CS101`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()
		ctx := context.Background()

		explainer, err := InitExplainer(s, nil)
		if err != nil {
			HandleError(err, "Failed to initialize explainer")
		}

		l, err := FetchPrediction(ctx, s, args[0])
		if err != nil {
			HandleError(err, "Failed to get prediction")
		}

		text, err := explainer.Explain(ctx, l.Student, *l.Prediction)
		if err != nil {
			HandleError(err, "Failed to explain prediction")
		}

		if explainRaw || RenderMarkdown == nil {
			fmt.Println(text)
			return
		}
		rendered, err := RenderMarkdown(text, 100)
		if err != nil {
			fmt.Println(text)
			return
		}
		fmt.Print(rendered)
	},
}

func init() {
	explainCmd.Flags().BoolVar(&explainRaw, "raw", false, "Print markdown without terminal rendering")
	rootCmd.AddCommand(explainCmd)
}
