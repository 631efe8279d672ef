package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict [roll-no]",
	Short: "Run a dropout-risk prediction for a student",
	Long: `Look up a student and request a dropout prediction from the backend.
Prints the student view and the prediction (risk level, probability, risk
factors and recommended interventions) as JSON.

Example:
  dropoutwatch predict 2023CS101`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := LoadSettings()

		l, err := FetchPrediction(context.Background(), s, args[0])
		if err != nil {
			HandleError(err, "Failed to get prediction")
		}

		printJSON(l)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
}
