package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultAPIURL is the backend used when nothing else is configured
const DefaultAPIURL = "http://localhost:8000"

// DefaultAIModel is the explainer model used when DROPOUT_AI_MODEL is unset
const DefaultAIModel = "claude-haiku-4-5"

// Config is the environment-derived configuration. Cobra flags in cmd
// override the matching fields after Load.
type Config struct {
	APIURL                  string
	DefaultAssignmentsTotal float64
	HTTPTimeout             time.Duration
	AnthropicAPIKey         string
	AIModel                 string
	AutoPredict             bool
	Debug                   bool
}

// Load reads the process environment once at startup
func Load() *Config {
	return &Config{
		APIURL:                  getEnv("DROPOUT_API_URL", DefaultAPIURL),
		DefaultAssignmentsTotal: getEnvFloat("DROPOUT_ASSIGNMENTS_TOTAL", 10),
		HTTPTimeout:             getEnvDuration("DROPOUT_HTTP_TIMEOUT", 30*time.Second),
		AnthropicAPIKey:         getEnv("ANTHROPIC_API_KEY", ""),
		AIModel:                 getEnv("DROPOUT_AI_MODEL", DefaultAIModel),
		AutoPredict:             getEnvBool("DROPOUT_AUTO_PREDICT", false),
		Debug:                   getEnvBool("DEBUG", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat ignores non-positive values
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
