package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"dropoutwatch/internal/config"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/report"
)

const explainSystemPrompt = `You are an academic advisor helping college counselors understand dropout-risk predictions.
Write for a counselor, not for the student. Be concrete and kind. Never invent numbers that are not in the data.`

// ExplainerService asks Claude for a narrative explanation of a prediction
type ExplainerService struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	cache     *CohortStore
	cacheTTL  time.Duration
}

// NewExplainerService creates a new explainer. cache may be nil.
func NewExplainerService(apiKey, model string, cache *CohortStore) (*ExplainerService, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Error("Explainer initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if model == "" {
		model = config.DefaultAIModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	if logger != nil {
		logger.Info("Explainer service initialized", "model", model, "cache", cache != nil)
	}

	return &ExplainerService{
		client:    &client,
		model:     model,
		maxTokens: 2000,
		cache:     cache,
		cacheTTL:  24 * time.Hour,
	}, nil
}

// buildExplainPrompt turns the normalized views into the user message
func buildExplainPrompt(v normalize.StudentView, p normalize.PredictionView) string {
	var b strings.Builder

	b.WriteString("Explain the following dropout-risk prediction in plain language.\n\n")
	b.WriteString("Structure your answer in markdown with these sections:\n")
	b.WriteString("1. **Summary**: two sentences on the overall risk.\n")
	b.WriteString("2. **Why**: the strongest drivers, tied to the metrics below.\n")
	b.WriteString("3. **Next steps**: which of the listed interventions to start with, and why.\n\n")
	b.WriteString("Student data:\n\n")
	b.WriteString(report.Markdown(v, &p))

	return b.String()
}

// fingerprint identifies the prediction an explanation was written for
func fingerprint(p normalize.PredictionView) string {
	names := make([]string, 0, len(p.RiskFactors))
	for _, f := range p.RiskFactors {
		names = append(names, f.Name+"="+normalize.FormatNumber(f.Contribution))
	}
	return fmt.Sprintf("%s|%s|%s", p.RiskLevel, normalize.FormatNumber(p.RiskPercentage), strings.Join(names, ","))
}

// Explain returns a markdown explanation, served from cache when the
// prediction has not changed
func (s *ExplainerService) Explain(ctx context.Context, v normalize.StudentView, p normalize.PredictionView) (string, error) {
	fp := fingerprint(p)

	if s.cache != nil {
		if cached, err := s.cache.LoadExplanation(v.RollNo, fp, s.cacheTTL); err == nil {
			if logger != nil {
				logger.Info("Returning cached explanation", "roll_no", v.RollNo)
			}
			return cached, nil
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: explainSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildExplainPrompt(v, p))),
		},
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Claude API call failed", "error", err, "roll_no", v.RollNo, "model", s.model)
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	responseText := ""
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			responseText += textBlock.Text
		}
	}

	if responseText == "" {
		if logger != nil {
			logger.Error("No text content in Claude API response", "roll_no", v.RollNo, "content_blocks", len(message.Content))
		}
		return "", fmt.Errorf("no text response from Claude")
	}

	if logger != nil {
		logger.Info("Generated explanation", "roll_no", v.RollNo, slog.Int("response_length", len(responseText)))
	}

	if s.cache != nil {
		// a failed cache write never fails the explanation
		if err := s.cache.SaveExplanation(v.RollNo, fp, responseText, s.model); err != nil && logger != nil {
			logger.Warn("Failed to cache explanation", "error", err, "roll_no", v.RollNo)
		}
	}

	return responseText, nil
}
