package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dropoutwatch/internal/normalize"
)

// stubExplainer returns a canned explanation
type stubExplainer struct {
	markdown string
	err      error
	calls    int
}

func (s *stubExplainer) Explain(ctx context.Context, v normalize.StudentView, p normalize.PredictionView) (string, error) {
	s.calls++
	return s.markdown, s.err
}

func newTestRouter(t *testing.T, autoPredict bool, explainer *stubExplainer) (http.Handler, *TestBackend) {
	t.Helper()
	backend, client := SetupTestBackend(t)
	config := ServerConfig{Settings: NewTestSettings(client, autoPredict)}
	if explainer != nil {
		config.Explainer = explainer
	}
	return NewRouter(config), backend
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

// TestLookupPage tests the main page render
func TestLookupPage(t *testing.T) {
	h, backend := newTestRouter(t, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/?roll=2023CS101", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	for _, want := range []string{`hx-post="/lookup"`, `value="2023CS101"`, `id="error-banner"`, `id="result"`} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if len(backend.Requests()) != 0 {
		t.Errorf("Expected no backend requests for the empty page, got %v", backend.Requests())
	}
}

// TestLookup tests the HTMX lookup endpoint
func TestLookup(t *testing.T) {
	testCases := []struct {
		name         string
		roll         string
		expectStatus int
		expectReswap string
		contains     []string
		requests     int
	}{
		{
			name:         "found",
			roll:         "2023CS101",
			expectStatus: http.StatusOK,
			contains:     []string{"Kiran Rao", "2023CS101", `class="metric danger"`, "Critical", "3/10", `hx-swap-oob="true"`},
			requests:     1,
		},
		{
			name:         "padded roll is trimmed",
			roll:         "  2023CS101 ",
			expectStatus: http.StatusOK,
			contains:     []string{"Kiran Rao"},
			requests:     1,
		},
		{
			name:         "not found only swaps the banner",
			roll:         "9999XX000",
			expectStatus: http.StatusOK,
			expectReswap: "none",
			contains:     []string{"Student not found", `hx-swap-oob="true"`},
			requests:     1,
		},
		{
			name:         "blank roll issues no request",
			roll:         "   ",
			expectStatus: http.StatusNoContent,
			expectReswap: "none",
			requests:     0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, backend := newTestRouter(t, false, nil)

			rec := postForm(t, h, "/lookup", url.Values{"roll_no": {tc.roll}})

			if rec.Code != tc.expectStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectStatus, rec.Code)
			}
			if got := rec.Header().Get("HX-Reswap"); got != tc.expectReswap {
				t.Errorf("Expected HX-Reswap %q, got %q", tc.expectReswap, got)
			}
			html := body(t, rec)
			for _, want := range tc.contains {
				if !strings.Contains(html, want) {
					t.Errorf("Expected response to contain %q", want)
				}
			}
			if got := len(backend.Requests()); got != tc.requests {
				t.Errorf("Expected %d backend requests, got %d", tc.requests, got)
			}
		})
	}
}

// TestLookupAutoPredict tests that auto-predict adds the prediction, and that
// a prediction failure still shows the student
func TestLookupAutoPredict(t *testing.T) {
	t.Run("prediction included", func(t *testing.T) {
		h, _ := newTestRouter(t, true, nil)

		html := body(t, postForm(t, h, "/lookup", url.Values{"roll_no": {"2023CS101"}}))
		if !strings.Contains(html, "HIGH RISK: 81.5% probability of dropout") {
			t.Error("Expected prediction in the card")
		}
	})

	t.Run("prediction failure", func(t *testing.T) {
		h, backend := newTestRouter(t, true, nil)
		backend.FailPrediction("2023CS101", "model unavailable")

		html := body(t, postForm(t, h, "/lookup", url.Values{"roll_no": {"2023CS101"}}))
		if !strings.Contains(html, "Kiran Rao") {
			t.Error("Expected the student card")
		}
		if !strings.Contains(html, "model unavailable") {
			t.Error("Expected the prediction error in the banner")
		}
	})
}

// TestPredictPartial tests the prediction endpoint
func TestPredictPartial(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, backend := newTestRouter(t, false, nil)

		rec := postForm(t, h, "/students/2023CS101/predict", nil)
		html := body(t, rec)

		requests := backend.Requests()
		if len(requests) != 1 || requests[0] != "POST /api/predict/2023CS101" {
			t.Errorf("Expected a single prediction request, got %v", requests)
		}

		for _, want := range []string{"Kiran Rao (2023CS101)", "HIGH RISK", "Low attendance", "Attendance is below 50%", "Mentor meeting", "(high priority)", "Assign mentor", "Refer to the scholarship office"} {
			if !strings.Contains(html, want) {
				t.Errorf("Expected prediction partial to contain %q", want)
			}
		}
		if rec.Header().Get("HX-Reswap") != "" {
			t.Error("Expected a normal swap on success")
		}
	})

	t.Run("backend message", func(t *testing.T) {
		h, backend := newTestRouter(t, false, nil)
		backend.FailPrediction("2023CS101", "model unavailable")

		rec := postForm(t, h, "/students/2023CS101/predict", nil)
		if rec.Header().Get("HX-Reswap") != "none" {
			t.Error("Expected HX-Reswap none so the page keeps its data")
		}
		if !strings.Contains(body(t, rec), ">model unavailable</div>") {
			t.Error("Expected banner text exactly 'model unavailable'")
		}
	})

	t.Run("no prediction for student", func(t *testing.T) {
		h, _ := newTestRouter(t, false, nil)

		html := body(t, postForm(t, h, "/students/2023PH201/predict", nil))
		if !strings.Contains(html, "Prediction failed") {
			t.Error("Expected default prediction failure message")
		}
	})
}

// TestStudentPage tests the full student page
func TestStudentPage(t *testing.T) {
	h, _ := newTestRouter(t, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/students/2023PH201", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	for _, want := range []string{"<title>Asha Menon</title>", "B.Sc Physics", "92%", `class="metric good"`, "On Track"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/students/9999XX000", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "Student not found") {
		t.Error("Expected error banner on the page")
	}
}

// TestExplainPartial tests the explanation endpoint with and without an explainer
func TestExplainPartial(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h, backend := newTestRouter(t, false, nil)

		html := body(t, postForm(t, h, "/students/2023CS101/explain", nil))
		if !strings.Contains(html, "ANTHROPIC_API_KEY") {
			t.Error("Expected a configuration hint")
		}
		if len(backend.Requests()) != 0 {
			t.Error("Expected no backend requests when explanations are disabled")
		}
	})

	t.Run("enabled", func(t *testing.T) {
		explainer := &stubExplainer{markdown: "## Why\nAttendance is the main driver."}
		h, _ := newTestRouter(t, false, explainer)

		html := body(t, postForm(t, h, "/students/2023CS101/explain", nil))
		if !strings.Contains(html, "Attendance is the main driver.") {
			t.Error("Expected explanation in the partial")
		}
		if explainer.calls != 1 {
			t.Errorf("Expected one explainer call, got %d", explainer.calls)
		}
	})

	t.Run("explainer error", func(t *testing.T) {
		explainer := &stubExplainer{err: errors.New("rate limited")}
		h, _ := newTestRouter(t, false, explainer)

		rec := postForm(t, h, "/students/2023CS101/explain", nil)
		if rec.Header().Get("HX-Reswap") != "none" {
			t.Error("Expected HX-Reswap none")
		}
		if !strings.Contains(body(t, rec), "AI explanation failed: rate limited") {
			t.Error("Expected explainer error in the banner")
		}
	})
}
