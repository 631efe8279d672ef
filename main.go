package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"

	"dropoutwatch/cmd"
)

var logger *slog.Logger

// setupLogger creates the application logger writing JSON lines to
// <dataDir>/err.log. It returns nil when the log file cannot be opened.
func setupLogger(dataDir string, debug bool) *slog.Logger {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create data directory: %v\n", err)
		return nil
	}

	logPath := filepath.Join(dataDir, "err.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		return nil
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	// Create JSON handler for structured logging
	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // Include file:line information
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0", "data_dir", dataDir, "debug", debug)

	return logger
}

// renderMarkdown renders markdown content with glamour for terminal display
func renderMarkdown(content string, width int) (string, error) {
	// Account for borders, padding, and glamour's internal gutter
	const glamourGutter = 2
	const borderWidth = 4

	renderWidth := width - borderWidth - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40 // Minimum width for readable content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}

	return renderer.Render(content)
}

// initCohort opens a fresh in-memory cohort store for CLI commands
func initCohort(s *cmd.Settings) (cmd.CohortInterface, func(), error) {
	store, err := NewCohortStore()
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open cohort store", "error", err)
		}
		return nil, nil, fmt.Errorf("failed to open cohort store: %w", err)
	}

	cleanup := func() {
		store.Close()
	}
	return store, cleanup, nil
}

// initExplainer builds the explainer for CLI commands. A cohort store, when
// given, doubles as the explanation cache.
func initExplainer(s *cmd.Settings, cohort cmd.CohortInterface) (cmd.ExplainerInterface, error) {
	var cache *CohortStore
	if store, ok := cohort.(*CohortStore); ok {
		cache = store
	}

	explainer, err := NewExplainerService(s.Config.AnthropicAPIKey, s.Config.AIModel, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize explainer: %w", err)
	}
	return explainer, nil
}

func main() {
	// Set up cmd package callbacks
	cmd.SetupLogger = setupLogger
	cmd.LaunchTUI = launchTUI
	cmd.StartServer = startServer
	cmd.InitCohort = initCohort
	cmd.InitExplainer = initExplainer
	cmd.RenderMarkdown = renderMarkdown

	// Execute the CLI
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
