package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dropoutwatch/cmd"
	"dropoutwatch/internal/report"
	"dropoutwatch/internal/riskapi"
)

// APIHandler handles JSON API requests
type APIHandler struct {
	Settings  *cmd.Settings
	Explainer cmd.ExplainerInterface
}

// ListStudents handles API requests for the student listing
func (h *APIHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	course := r.URL.Query().Get("course")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	students, err := cmd.ListStudents(r.Context(), h.Settings, query, course, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"count":    len(students),
		"query":    query,
		"course":   course,
	})
}

// GetStudent handles API requests for a single normalized student
func (h *APIHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	l, err := cmd.FetchStudent(r.Context(), h.Settings, chi.URLParam(r, "roll"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, l.Student)
}

// Predict handles API requests for a student's dropout prediction
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	pred, err := cmd.RequestPrediction(r.Context(), h.Settings, chi.URLParam(r, "roll"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pred)
}

// Report returns the markdown report. ?predict=true includes the prediction.
func (h *APIHandler) Report(w http.ResponseWriter, r *http.Request) {
	roll := chi.URLParam(r, "roll")

	var l *cmd.Lookup
	var err error
	if predict, _ := strconv.ParseBool(r.URL.Query().Get("predict")); predict {
		l, err = cmd.FetchPrediction(r.Context(), h.Settings, roll)
	} else {
		l, err = cmd.FetchStudent(r.Context(), h.Settings, roll)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Markdown(l.Student, l.Prediction)))
}

// Explain handles API requests for an AI explanation of a prediction
func (h *APIHandler) Explain(w http.ResponseWriter, r *http.Request) {
	if h.Explainer == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": errExplainerDisabled.Error(),
		})
		return
	}

	l, err := cmd.FetchPrediction(r.Context(), h.Settings, chi.URLParam(r, "roll"))
	if err != nil {
		respondError(w, err)
		return
	}

	markdown, err := h.Explainer.Explain(r.Context(), l.Student, *l.Prediction)
	if err != nil {
		log.Printf("AI explanation error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "AI explanation failed: " + err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roll_no":    l.Student.RollNo,
		"prediction": l.Prediction,
		"markdown":   markdown,
	})
}

// respondError maps a backend error onto a status and the banner message
func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if predErr := riskapi.AsPredictionError(err); predErr != nil && predErr.StatusCode >= 400 && predErr.StatusCode < 500 {
		status = predErr.StatusCode
	}
	if status != http.StatusNotFound {
		log.Printf("Backend error: %v", err)
	}
	respondJSON(w, status, map[string]string{
		"error": riskapi.Message(err),
	})
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}
