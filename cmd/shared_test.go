package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dropoutwatch/internal/config"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/riskapi"
	"dropoutwatch/internal/severity"
)

// fakeCohort records what LoadCohort adds
type fakeCohort struct {
	added []normalize.StudentView
	err   error
}

func (f *fakeCohort) Add(v normalize.StudentView) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, v)
	return nil
}
func (f *fakeCohort) Count() (int, error) { return len(f.added), nil }
func (f *fakeCohort) Overview() (map[string]interface{}, error) { return map[string]interface{}{}, nil }
func (f *fakeCohort) Breakdown() ([]map[string]interface{}, error) { return nil, nil }
func (f *fakeCohort) AtRisk() ([]map[string]interface{}, error) { return nil, nil }
func (f *fakeCohort) ExecuteQuery(string) ([]map[string]interface{}, error) { return nil, nil }
func (f *fakeCohort) Close() error { return nil }

func newTestSettings(t *testing.T) *Settings {
	t.Helper()

	students := map[string]map[string]interface{}{
		"2023CS101": {
			"roll_no": "2023CS101", "name": "Kiran Rao", "course": "B.Tech CSE",
			"attendance_percentage": 45, "cgpa_current": 5.5, "cgpa_previous": 6.0,
			"assignments_submitted": 3, "assignments_total": 10,
		},
		"2023EE150": {
			"roll_no": "2023EE150", "name": "Ravi Kumar", "course": "B.Tech EEE",
			"attendance_percentage": 88, "cgpa_current": 7.8, "cgpa_previous": 7.2,
			"assignments_submitted": 7,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/student":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total": 3,
				"students": []map[string]string{
					{"roll_no": "2023CS101", "name": "Kiran Rao", "course": "B.Tech CSE"},
					{"roll_no": "2023EE150", "name": "Ravi Kumar", "course": "B.Tech EEE"},
					{"roll_no": "2023ME999", "name": "Ghost Entry", "course": "B.Tech ME"},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/api/student/"):
			rec, ok := students[strings.TrimPrefix(r.URL.Path, "/api/student/")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "Student not found"})
				return
			}
			json.NewEncoder(w).Encode(rec)
		case strings.HasPrefix(r.URL.Path, "/api/predict/"):
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "model unavailable"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return &Settings{
		Config:  &config.Config{APIURL: srv.URL},
		Client:  riskapi.NewClient(srv.URL),
		Options: normalize.DefaultOptions(),
	}
}

func TestNormalizeRoll(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "plain", input: "2023CS101", expected: "2023CS101"},
		{name: "padded", input: "  2023CS101\t", expected: "2023CS101"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeRoll(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrRollRequired) {
					t.Errorf("Expected ErrRollRequired, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestFilterStudents(t *testing.T) {
	all := []riskapi.StudentSummary{
		{RollNo: "2023CS101", Name: "Kiran Rao", Course: "B.Tech CSE"},
		{RollNo: "2023CS102", Name: "Meera Iyer", Course: "B.Tech CSE"},
		{RollNo: "2023EE150", Name: "Ravi Kumar", Course: "B.Tech EEE"},
	}

	testCases := []struct {
		name     string
		query    string
		course   string
		limit    int
		expected []string
	}{
		{name: "no filter", expected: []string{"2023CS101", "2023CS102", "2023EE150"}},
		{name: "roll prefix", query: "2023cs", expected: []string{"2023CS101", "2023CS102"}},
		{name: "name case-insensitive", query: "RAVI", expected: []string{"2023EE150"}},
		{name: "course", course: "eee", expected: []string{"2023EE150"}},
		{name: "limit", query: "2023", limit: 2, expected: []string{"2023CS101", "2023CS102"}},
		{name: "no match", query: "zzz", expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := filterStudents(all, tc.query, tc.course, tc.limit)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %d students, got %d", len(tc.expected), len(got))
			}
			for i, roll := range tc.expected {
				if got[i].RollNo != roll {
					t.Errorf("Expected %s at %d, got %s", roll, i, got[i].RollNo)
				}
			}
		})
	}
}

func TestBuildSummarizeQuery(t *testing.T) {
	if got := buildSummarizeQuery(""); got != "SUMMARIZE cohort" {
		t.Errorf("Expected default table summary, got %q", got)
	}
	if got := buildSummarizeQuery("SELECT * FROM cohort WHERE attendance < 50"); got != "SUMMARIZE (SELECT * FROM cohort WHERE attendance < 50)" {
		t.Errorf("Unexpected query %q", got)
	}
}

func TestFetchStudent(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	l, err := FetchStudent(ctx, s, " 2023CS101 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if l.Roll != "2023CS101" {
		t.Errorf("Expected trimmed roll, got %q", l.Roll)
	}
	if l.Student.Attendance.Level != severity.Danger || l.Student.CGPA.Level != severity.Warning {
		t.Errorf("Unexpected levels %s/%s", l.Student.Attendance.Level, l.Student.CGPA.Level)
	}
	if l.Student.CGPATrend.Direction != normalize.Down || l.Student.CGPATrend.String() != "-0.5" {
		t.Errorf("Expected trend down -0.5, got %s %s", l.Student.CGPATrend.Direction, l.Student.CGPATrend)
	}

	// a record without a total falls back to the configured default
	l, err = FetchStudent(ctx, s, "2023EE150")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if l.Student.AssignmentsTotal != 10 || l.Student.Assignments.Value != 70 || l.Student.Assignments.Level != severity.Warning {
		t.Errorf("Expected 7/10 = 70%% warning, got %v/%v %s", l.Student.AssignmentsSubmitted, l.Student.AssignmentsTotal, l.Student.Assignments.Level)
	}

	if _, err := FetchStudent(ctx, s, "9999XX000"); !riskapi.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := FetchStudent(ctx, s, " "); !errors.Is(err, ErrRollRequired) {
		t.Errorf("Expected ErrRollRequired, got %v", err)
	}
}

func TestFetchPredictionError(t *testing.T) {
	s := newTestSettings(t)

	_, err := FetchPrediction(context.Background(), s, "2023CS101")
	if err == nil {
		t.Fatal("Expected a prediction error")
	}
	if got := riskapi.Message(err); got != "model unavailable" {
		t.Errorf("Expected 'model unavailable', got %q", got)
	}

	l, err := FetchStudent(context.Background(), s, "2023CS101")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := AttachPrediction(context.Background(), s, l); err == nil {
		t.Fatal("Expected a prediction error")
	}
	if l.Prediction != nil {
		t.Error("Expected lookup to be left without a prediction")
	}
}

func TestLoadCohort(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	t.Run("every listed student", func(t *testing.T) {
		cohort := &fakeCohort{}
		loaded, failed, err := LoadCohort(ctx, s, cohort, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if loaded != 2 || len(cohort.added) != 2 {
			t.Errorf("Expected 2 loaded, got %d", loaded)
		}
		if failed["2023ME999"] != "Student not found" {
			t.Errorf("Expected the missing student to be recorded, got %v", failed)
		}
	})

	t.Run("explicit rolls", func(t *testing.T) {
		cohort := &fakeCohort{}
		loaded, failed, err := LoadCohort(ctx, s, cohort, []string{"2023EE150"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if loaded != 1 || len(failed) != 0 || cohort.added[0].RollNo != "2023EE150" {
			t.Errorf("Unexpected result: loaded=%d failed=%v", loaded, failed)
		}
	})

	t.Run("store error stops", func(t *testing.T) {
		cohort := &fakeCohort{err: errors.New("disk full")}
		if _, _, err := LoadCohort(ctx, s, cohort, []string{"2023CS101"}); err == nil {
			t.Error("Expected the store error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, _, err := LoadCohort(cctx, s, &fakeCohort{}, []string{"2023CS101"}); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestRequestPrediction(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/predict/2023CS101" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "model unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"risk_level":      "MEDIUM",
			"risk_percentage": 55,
			"student_info":    map[string]interface{}{"roll_no": "2023CS101", "name": "Kiran Rao"},
		})
	}))
	t.Cleanup(srv.Close)

	s := &Settings{
		Config:  &config.Config{APIURL: srv.URL},
		Client:  riskapi.NewClient(srv.URL),
		Options: normalize.DefaultOptions(),
	}
	ctx := context.Background()

	pred, err := RequestPrediction(ctx, s, " 2023CS101 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pred.RiskLevel != "MEDIUM" || pred.Severity != severity.Warning || pred.Student.Name != "Kiran Rao" {
		t.Errorf("Unexpected prediction %+v", pred)
	}
	if len(requests) != 1 || requests[0] != "POST /api/predict/2023CS101" {
		t.Errorf("Expected only the prediction request, got %v", requests)
	}

	// the banner text comes from the prediction failure, never a student lookup
	if _, err := RequestPrediction(ctx, s, "2023EE150"); riskapi.Message(err) != "model unavailable" {
		t.Errorf("Expected 'model unavailable', got %v", err)
	}
	if _, err := RequestPrediction(ctx, s, ""); !errors.Is(err, ErrRollRequired) {
		t.Errorf("Expected ErrRollRequired, got %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("Expected a blank roll to send nothing, got %v", requests)
	}
}
