package riskapi

import (
	"errors"
	"fmt"
)

// ErrStudentNotFound is returned for any non-2xx student lookup
var ErrStudentNotFound = errors.New("Student not found")

// DefaultPredictionMessage is shown when a failed prediction carries no message
const DefaultPredictionMessage = "Prediction failed"

// PredictionError is a non-2xx prediction response
type PredictionError struct {
	StatusCode int
	Message    string
}

func (e *PredictionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultPredictionMessage
}

// StatusError is any other non-2xx response
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d for %s", e.StatusCode, e.Path)
}

// IsNotFound reports whether err is a failed student lookup
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound)
}

// AsPredictionError unwraps a prediction failure, or returns nil
func AsPredictionError(err error) *PredictionError {
	var predErr *PredictionError
	if errors.As(err, &predErr) {
		return predErr
	}
	return nil
}

// Message turns any client error into the single line shown in the error banner
func Message(err error) string {
	if err == nil {
		return ""
	}
	if IsNotFound(err) {
		return ErrStudentNotFound.Error()
	}
	if predErr := AsPredictionError(err); predErr != nil {
		return predErr.Error()
	}
	return err.Error()
}
