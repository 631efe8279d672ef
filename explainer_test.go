package main

import (
	"context"
	"strings"
	"testing"

	"dropoutwatch/internal/config"
	"dropoutwatch/internal/normalize"
)

func testViews() (normalize.StudentView, normalize.PredictionView) {
	student := MockStudentRecord("2023CS101", "Kiran Rao")
	v := normalize.Student(student, normalize.DefaultOptions())
	p := normalize.Prediction(MockPredictionRecord("2023CS101"), student)
	return v, p
}

// TestNewExplainerServiceRequiresKey tests that a missing key is an error
func TestNewExplainerServiceRequiresKey(t *testing.T) {
	if _, err := NewExplainerService("", "", nil); err == nil {
		t.Error("Expected an error without an API key")
	}

	s, err := NewExplainerService("test-key", "", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.model != config.DefaultAIModel {
		t.Errorf("Expected default model %s, got %s", config.DefaultAIModel, s.model)
	}
}

// TestBuildExplainPrompt tests that the prompt carries the report
func TestBuildExplainPrompt(t *testing.T) {
	v, p := testViews()
	prompt := buildExplainPrompt(v, p)

	for _, want := range []string{"**Summary**", "**Next steps**", "# Kiran Rao (2023CS101)", "HIGH RISK", "Low attendance", "Mentor meeting"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

// TestFingerprint tests that the fingerprint follows the prediction
func TestFingerprint(t *testing.T) {
	_, p := testViews()

	if got := fingerprint(p); got != "HIGH|81.5|Low attendance=35,Falling CGPA=20" {
		t.Errorf("Unexpected fingerprint %q", got)
	}

	changed := p
	changed.RiskPercentage = 60
	if fingerprint(changed) == fingerprint(p) {
		t.Error("Expected a different fingerprint for a different prediction")
	}
}

// TestExplainServedFromCache tests that a cached explanation skips the API call
func TestExplainServedFromCache(t *testing.T) {
	store := SetupTestCohort(t)
	v, p := testViews()

	if err := store.SaveExplanation(v.RollNo, fingerprint(p), "cached explanation", "claude-haiku-4-5"); err != nil {
		t.Fatalf("SaveExplanation failed: %v", err)
	}

	s, err := NewExplainerService("test-key", "", store)
	if err != nil {
		t.Fatalf("NewExplainerService failed: %v", err)
	}

	md, err := s.Explain(context.Background(), v, p)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if md != "cached explanation" {
		t.Errorf("Expected cached explanation, got %q", md)
	}
}
