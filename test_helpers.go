package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dropoutwatch/cmd"
	"dropoutwatch/internal/config"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/riskapi"
)

// TestBackend is an in-process stand-in for the risk API
type TestBackend struct {
	mu          sync.Mutex
	students    map[string]map[string]interface{}
	predictions map[string]map[string]interface{}
	predictErr  map[string]string
	requests    []string
}

// Requests returns the "METHOD path" of every request served so far
func (b *TestBackend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// FailPrediction makes the prediction endpoint answer 500 with message
func (b *TestBackend) FailPrediction(rollNo, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.predictErr[rollNo] = message
}

func (b *TestBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/student":
		list := []map[string]interface{}{}
		for roll, rec := range b.students {
			list = append(list, map[string]interface{}{"roll_no": roll, "name": rec["name"], "course": rec["course"]})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"total": len(list), "students": list})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/student/"):
		rec, ok := b.students[strings.TrimPrefix(r.URL.Path, "/api/student/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Student not found"})
			return
		}
		json.NewEncoder(w).Encode(rec)

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/predict/"):
		roll := strings.TrimPrefix(r.URL.Path, "/api/predict/")
		if msg, ok := b.predictErr[roll]; ok {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": msg})
			return
		}
		pred, ok := b.predictions[roll]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Student not found"})
			return
		}
		json.NewEncoder(w).Encode(pred)

	default:
		http.NotFound(w, r)
	}
}

// SetupTestBackend starts a mock backend holding 2023CS101 (at risk, with a
// prediction) and 2023PH201 (on track, camelCase keys, no prediction)
func SetupTestBackend(t *testing.T) (*TestBackend, *riskapi.Client) {
	t.Helper()

	backend := &TestBackend{
		students: map[string]map[string]interface{}{
			"2023CS101": MockStudentRecord("2023CS101", "Kiran Rao"),
			"2023PH201": MockHealthyStudentRecord("2023PH201", "Asha Menon"),
		},
		predictions: map[string]map[string]interface{}{},
		predictErr: map[string]string{},
	}

	// predictions carry a student summary the way the real backend answers
	pred := MockPredictionRecord("2023CS101")
	student := backend.students["2023CS101"]
	pred["student_info"] = map[string]interface{}{
		"roll_no": "2023CS101",
		"name":    student["name"],
		"course":  student["course"],
		"year":    student["year"],
	}
	backend.predictions["2023CS101"] = pred

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	return backend, riskapi.NewClient(srv.URL)
}

// SetupTestCohort opens an in-memory cohort store closed at test end
func SetupTestCohort(t *testing.T) *CohortStore {
	t.Helper()

	store, err := NewCohortStore()
	if err != nil {
		t.Fatalf("failed to open cohort store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// NewTestSettings wraps a client in command settings with default options
func NewTestSettings(client *riskapi.Client, autoPredict bool) *cmd.Settings {
	return &cmd.Settings{
		DataDir: "",
		Config: &config.Config{
			APIURL:                  client.BaseURL(),
			DefaultAssignmentsTotal: normalize.DefaultAssignmentsTotal,
			AutoPredict:             autoPredict,
		},
		Client:  client,
		Options: normalize.DefaultOptions(),
	}
}
