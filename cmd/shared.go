package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/riskapi"
)

// CohortInterface wraps the in-memory analytic store for CLI commands
type CohortInterface interface {
	Add(v normalize.StudentView) error
	Count() (int, error)
	Overview() (map[string]interface{}, error)
	Breakdown() ([]map[string]interface{}, error)
	AtRisk() ([]map[string]interface{}, error)
	ExecuteQuery(query string) ([]map[string]interface{}, error)
	Close() error
}

// ExplainerInterface defines the interface for AI explanations
type ExplainerInterface interface {
	Explain(ctx context.Context, v normalize.StudentView, p normalize.PredictionView) (string, error)
}

// These variables will be set by main package
var (
	LaunchTUI      func(s *Settings)
	StartServer    func(s *Settings, port int) error
	SetupLogger    func(dataDir string, debug bool) *slog.Logger
	InitCohort     func(s *Settings) (CohortInterface, func(), error)
	InitExplainer  func(s *Settings, cohort CohortInterface) (ExplainerInterface, error)
	RenderMarkdown func(content string, width int) (string, error)
)

// HandleError prints error and exits
func HandleError(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error: %s: %s\n", message, riskapi.Message(err))
	os.Exit(1)
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		HandleError(err, "Failed to encode JSON")
	}
	fmt.Println(string(output))
}

// ErrRollRequired is returned for an empty or blank roll number
var ErrRollRequired = errors.New("roll number is required")

// normalizeRoll trims the roll number and rejects empty input
func normalizeRoll(roll string) (string, error) {
	roll = strings.TrimSpace(roll)
	if roll == "" {
		return "", ErrRollRequired
	}
	return roll, nil
}

// Lookup is a fetched student, optionally with its prediction
type Lookup struct {
	Roll       string                    `json:"-"`
	Record     normalize.Record          `json:"-"`
	Student    normalize.StudentView     `json:"student"`
	Prediction *normalize.PredictionView `json:"prediction,omitempty"`
}

// FetchStudent looks up one student and normalizes the record
func FetchStudent(ctx context.Context, s *Settings, roll string) (*Lookup, error) {
	roll, err := normalizeRoll(roll)
	if err != nil {
		return nil, err
	}
	rec, err := s.Client.GetStudent(ctx, roll)
	if err != nil {
		return nil, err
	}
	return &Lookup{Roll: roll, Record: rec, Student: normalize.Student(rec, s.Options)}, nil
}

// FetchPrediction looks up a student and then requests its prediction
func FetchPrediction(ctx context.Context, s *Settings, roll string) (*Lookup, error) {
	l, err := FetchStudent(ctx, s, roll)
	if err != nil {
		return nil, err
	}
	if err := AttachPrediction(ctx, s, l); err != nil {
		return nil, err
	}
	return l, nil
}

// AttachPrediction requests the prediction for an already loaded student, by the
// roll number it was looked up with. On failure l is left as it was.
func AttachPrediction(ctx context.Context, s *Settings, l *Lookup) error {
	rec, err := s.Client.Predict(ctx, l.Roll)
	if err != nil {
		return err
	}
	pred := normalize.Prediction(rec, l.Record)
	l.Prediction = &pred
	return nil
}

// RequestPrediction asks the backend for a prediction without looking the
// student up first. The student summary comes from the prediction's own
// student_info.
func RequestPrediction(ctx context.Context, s *Settings, roll string) (*normalize.PredictionView, error) {
	roll, err := normalizeRoll(roll)
	if err != nil {
		return nil, err
	}
	rec, err := s.Client.Predict(ctx, roll)
	if err != nil {
		return nil, err
	}
	pred := normalize.Prediction(rec, nil)
	return &pred, nil
}

// CohortResult summarizes a loaded cohort
type CohortResult struct {
	Loaded    int                      `json:"loaded"`
	Failed    map[string]string        `json:"failed,omitempty"`
	Overview  map[string]interface{}   `json:"overview"`
	Breakdown []map[string]interface{} `json:"breakdown"`
	AtRisk    []map[string]interface{} `json:"at_risk"`
}

// LoadCohort fetches each roll number (every student the backend lists when
// rolls is empty) into the cohort store. A student that fails to load is
// recorded and skipped.
func LoadCohort(ctx context.Context, s *Settings, cohort CohortInterface, rolls []string) (int, map[string]string, error) {
	if len(rolls) == 0 {
		students, err := s.Client.ListStudents(ctx)
		if err != nil {
			return 0, nil, err
		}
		for _, st := range students {
			rolls = append(rolls, st.RollNo)
		}
	}

	failed := map[string]string{}
	loaded := 0
	for _, roll := range rolls {
		if err := ctx.Err(); err != nil {
			return loaded, failed, err
		}
		l, err := FetchStudent(ctx, s, roll)
		if err != nil {
			failed[roll] = riskapi.Message(err)
			continue
		}
		if err := cohort.Add(l.Student); err != nil {
			return loaded, failed, err
		}
		loaded++
	}
	return loaded, failed, nil
}

// SummarizeCohort loads rolls into a fresh store and collects its summary
func SummarizeCohort(ctx context.Context, s *Settings, rolls []string) (*CohortResult, error) {
	cohort, cleanup, err := InitCohort(s)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cohort store: %w", err)
	}
	defer cleanup()

	loaded, failed, err := LoadCohort(ctx, s, cohort, rolls)
	if err != nil {
		return nil, err
	}

	result := &CohortResult{Loaded: loaded, Failed: failed}
	if result.Overview, err = cohort.Overview(); err != nil {
		return nil, err
	}
	if result.Breakdown, err = cohort.Breakdown(); err != nil {
		return nil, err
	}
	if result.AtRisk, err = cohort.AtRisk(); err != nil {
		return nil, err
	}
	return result, nil
}
