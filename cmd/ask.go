package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dropoutwatch/internal/agent"
	"dropoutwatch/internal/report"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question using Claude AI via Fantasy",
	Long: `Ask a natural language question and get an AI-powered answer. The agent can
look up students, run predictions, build reports and summarize a cohort by
calling this program's own commands as tools.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  dropoutwatch ask "Why is 2023CS101 at risk and what should we do first?"
  dropoutwatch ask "Which students have attendance in the danger tier?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")
		s := LoadSettings()
		ctx := context.Background()

		opts := []agent.AgentOption{
			agent.WithBackend(&settingsBackend{settings: s}),
			agent.WithModel(s.Config.AIModel),
		}
		if s.Config.AnthropicAPIKey != "" {
			opts = append(opts, agent.WithAPIKey(s.Config.AnthropicAPIKey))
		} else {
			opts = append(opts, agent.WithAPIKeyFromEnv())
		}

		answer, err := agent.GenerateResponse(ctx, question, rootCmd, opts...)
		if err != nil {
			HandleError(err, "Failed to answer question")
		}

		fmt.Println(answer)
	},
}

// settingsBackend adapts the command helpers to agent.Backend
type settingsBackend struct {
	settings *Settings
}

func (b *settingsBackend) Student(ctx context.Context, rollNo string) (any, error) {
	l, err := FetchStudent(ctx, b.settings, rollNo)
	if err != nil {
		return nil, err
	}
	return l.Student, nil
}

func (b *settingsBackend) Predict(ctx context.Context, rollNo string) (any, error) {
	l, err := FetchPrediction(ctx, b.settings, rollNo)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (b *settingsBackend) Report(ctx context.Context, rollNo string, predict bool) (string, error) {
	var l *Lookup
	var err error
	if predict {
		l, err = FetchPrediction(ctx, b.settings, rollNo)
	} else {
		l, err = FetchStudent(ctx, b.settings, rollNo)
	}
	if err != nil {
		return "", err
	}
	return report.Markdown(l.Student, l.Prediction), nil
}

func (b *settingsBackend) Cohort(ctx context.Context, rollNos []string) (any, error) {
	return SummarizeCohort(ctx, b.settings, rollNos)
}

func (b *settingsBackend) List(ctx context.Context, query string) (any, error) {
	return ListStudents(ctx, b.settings, query, "", 0)
}

func init() {
	rootCmd.AddCommand(askCmd)
}
