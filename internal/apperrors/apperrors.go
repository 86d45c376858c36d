// Package apperrors holds the error taxonomy shared by the matching run.
//
// ConfigurationError, GenerationError, PipelineError and PersistenceError are fatal for a run.
// ExtractionError is recovered locally: it travels as a warning next to a degraded record.
package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid setting detected before any stage executes.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// GenerationError reports a failed or timed out call to the text generation backend.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PipelineError identifies the stage that aborted a run.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// ExtractionError reports that no structured record could be recovered from a text output.
type ExtractionError struct {
	Attempts []error
}

func (e *ExtractionError) Error() string {
	if len(e.Attempts) == 0 {
		return "no structured data found"
	}
	return fmt.Sprintf("no structured data found: %v", errors.Join(e.Attempts...))
}

func (e *ExtractionError) Unwrap() []error { return e.Attempts }

// PersistenceError reports that a computed report could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting report to %q: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Stage returns the failing stage recorded in err, if any.
func Stage(err error) (string, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
