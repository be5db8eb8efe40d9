package pipeline

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Per-attempt backend failures are never surfaced
// as errors: they are recovered locally by the fallback policy and reported
// only through the attempt diagnostics.
var (
	// ErrInvalidInput is returned for input rejected before any backend is
	// consulted. It is the only hard failure the pipeline propagates.
	ErrInvalidInput = errors.New("invalid input")

	// ErrImageTooLarge is returned when the upload exceeds the configured
	// size cap. Wraps ErrInvalidInput.
	ErrImageTooLarge = fmt.Errorf("%w: image exceeds the maximum size", ErrInvalidInput)

	// ErrNotAnImage is returned when the upload is not a raster image.
	// Wraps ErrInvalidInput.
	ErrNotAnImage = fmt.Errorf("%w: file is not a supported image", ErrInvalidInput)

	// ErrAllBackendsFailed is returned when every backend/strategy attempt
	// failed or produced unusable text. It is recoverable: the prescribed
	// recovery is manual entry, not a retry loop.
	ErrAllBackendsFailed = errors.New("all OCR backends failed")
)

// PipelineError wraps errors with the operation and context that failed.
type PipelineError struct {
	// Op is the operation that failed (e.g., "Extract", "Preprocess").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pipeline: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pipeline: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is chains.
func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapPipelineError wraps an error as a PipelineError if it isn't already one.
func WrapPipelineError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return err
	}
	return &PipelineError{Op: op, Err: err, Details: details}
}
