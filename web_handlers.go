package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dropoutwatch/cmd"
	"dropoutwatch/internal/normalize"
	"dropoutwatch/internal/riskapi"
)

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatNumber": normalize.FormatNumber,
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f", f)
	},
}

var errExplainerDisabled = errors.New("AI explanations are not available: ANTHROPIC_API_KEY not set")

// WebHandler handles HTMX HTML requests
type WebHandler struct {
	Settings  *cmd.Settings
	Explainer cmd.ExplainerInterface
	templates *template.Template
}

// NewWebHandler creates a new WebHandler with parsed templates
func NewWebHandler(s *cmd.Settings, explainer cmd.ExplainerInterface) *WebHandler {
	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS,
		"templates/*.html", "templates/partials/*.html"))
	return &WebHandler{
		Settings:  s,
		Explainer: explainer,
		templates: tmpl,
	}
}

// LookupPage renders the main lookup page
func (h *WebHandler) LookupPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title": "Dropout Watch",
		"Roll":  r.URL.Query().Get("roll"),
		"Error": "",
	}
	h.render(w, http.StatusOK, "index.html", data)
}

// Lookup fetches the submitted roll number and returns the student card. A
// failed lookup only swaps the error banner, so the card already on the page
// stays visible.
func (h *WebHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	roll := strings.TrimSpace(r.FormValue("roll_no"))
	if roll == "" {
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	l, err := cmd.FetchStudent(r.Context(), h.Settings, roll)
	if err != nil {
		h.renderError(w, err)
		return
	}

	banner := ""
	if h.Settings.Config.AutoPredict {
		if err := cmd.AttachPrediction(r.Context(), h.Settings, l); err != nil {
			log.Printf("Prediction error: %v", err)
			banner = riskapi.Message(err)
		}
	}

	h.renderPartial(w, "student_card.html", h.cardData(l), banner)
}

// StudentPage renders the lookup page with one student already loaded
func (h *WebHandler) StudentPage(w http.ResponseWriter, r *http.Request) {
	roll := chi.URLParam(r, "roll")

	data := map[string]interface{}{
		"Title": "Dropout Watch",
		"Roll":  roll,
		"Error": "",
	}

	l, err := cmd.FetchStudent(r.Context(), h.Settings, roll)
	if err != nil {
		log.Printf("Lookup error: %v", err)
		data["Error"] = riskapi.Message(err)
		h.render(w, errorStatus(err), "index.html", data)
		return
	}

	data["Title"] = l.Student.Name
	data["Card"] = h.cardData(l)
	h.render(w, http.StatusOK, "index.html", data)
}

// Predict returns the prediction partial for a student
func (h *WebHandler) Predict(w http.ResponseWriter, r *http.Request) {
	pred, err := cmd.RequestPrediction(r.Context(), h.Settings, chi.URLParam(r, "roll"))
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.renderPartial(w, "prediction.html", pred, "")
}

// Explain returns the AI explanation partial for a student's prediction
func (h *WebHandler) Explain(w http.ResponseWriter, r *http.Request) {
	if h.Explainer == nil {
		h.renderError(w, errExplainerDisabled)
		return
	}

	l, err := cmd.FetchPrediction(r.Context(), h.Settings, chi.URLParam(r, "roll"))
	if err != nil {
		h.renderError(w, err)
		return
	}

	markdown, err := h.Explainer.Explain(r.Context(), l.Student, *l.Prediction)
	if err != nil {
		h.renderError(w, fmt.Errorf("AI explanation failed: %w", err))
		return
	}

	h.renderPartial(w, "explanation.html", markdown, "")
}

func (h *WebHandler) cardData(l *cmd.Lookup) map[string]interface{} {
	return map[string]interface{}{
		"Student":    l.Student,
		"Prediction": l.Prediction,
		"CanExplain": h.Explainer != nil,
	}
}

func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// renderPartial writes a partial followed by an out-of-band error banner,
// which is empty (hidden) unless banner is set
func (h *WebHandler) renderPartial(w http.ResponseWriter, name string, data interface{}, banner string) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.templates.ExecuteTemplate(&buf, "error_banner.html", bannerData(banner)); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// renderError shows err in the banner and tells htmx not to touch the swap
// target. htmx drops non-2xx bodies, so this answers 200.
func (h *WebHandler) renderError(w http.ResponseWriter, err error) {
	log.Printf("Request error: %v", err)
	w.Header().Set("HX-Reswap", "none")
	h.render(w, http.StatusOK, "error_banner.html", bannerData(riskapi.Message(err)))
}

func bannerData(message string) map[string]interface{} {
	return map[string]interface{}{"Error": message, "OOB": true}
}

// errorStatus maps a backend error onto the status a full page answers with
func errorStatus(err error) int {
	switch {
	case riskapi.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, cmd.ErrRollRequired):
		return http.StatusBadRequest
	case errors.Is(err, errExplainerDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
