package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dropoutwatch/cmd"
)

// ServerConfig holds configuration for the web server
type ServerConfig struct {
	Port      int
	Settings  *cmd.Settings
	Explainer cmd.ExplainerInterface
}

// NewRouter wires the HTML and JSON handlers onto one chi router
func NewRouter(config ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Web handlers (HTMX HTML responses)
	webHandler := NewWebHandler(config.Settings, config.Explainer)
	r.Get("/", webHandler.LookupPage)
	r.Post("/lookup", webHandler.Lookup)
	r.Get("/students/{roll}", webHandler.StudentPage)
	r.Post("/students/{roll}/predict", webHandler.Predict)
	r.Post("/students/{roll}/explain", webHandler.Explain)

	// API handlers (JSON responses)
	apiHandler := &APIHandler{Settings: config.Settings, Explainer: config.Explainer}
	r.Route("/api", func(r chi.Router) {
		r.Get("/students", apiHandler.ListStudents)
		r.Get("/students/{roll}", apiHandler.GetStudent)
		r.Post("/students/{roll}/predict", apiHandler.Predict)
		r.Get("/students/{roll}/report", apiHandler.Report)
		r.Post("/students/{roll}/explain", apiHandler.Explain)
	})

	return r
}

// StartServer initializes and starts the HTTP server
func StartServer(config ServerConfig) error {
	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("Starting server on http://localhost%s (backend %s)", addr, config.Settings.Client.BaseURL())
	if logger != nil {
		logger.Info("Starting web server", "addr", addr, "backend", config.Settings.Client.BaseURL(), "explainer", config.Explainer != nil)
	}
	return http.ListenAndServe(addr, NewRouter(config))
}

// startServer is the cmd.StartServer hook. Explanations are only offered when an
// API key is configured.
func startServer(s *cmd.Settings, port int) error {
	config := ServerConfig{Port: port, Settings: s}

	cohort, err := NewCohortStore()
	if err != nil {
		return fmt.Errorf("failed to open explanation cache: %w", err)
	}
	defer cohort.Close()

	if explainer, err := NewExplainerService(s.Config.AnthropicAPIKey, s.Config.AIModel, cohort); err == nil {
		config.Explainer = explainer
	} else {
		log.Printf("AI explanations disabled: %v", err)
	}

	return StartServer(config)
}
