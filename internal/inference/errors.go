package inference

import (
	"context"
	"errors"
	"fmt"

	"careermind-api/internal/shared"
)

// GenerationError is any failure between handing a prompt to the model and
// getting decoded text back. Code is a stable metrics label.
type GenerationError struct {
	Code string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Code, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(kind *shared.MetricsError, err error) *GenerationError {
	if err == nil {
		return &GenerationError{Code: kind.Code, Err: kind}
	}
	return &GenerationError{Code: kind.Code, Err: fmt.Errorf("%w: %w", kind, err)}
}

// AsGenerationError normalizes err into a GenerationError, classifying
// context errors and leaving existing GenerationErrors untouched.
func AsGenerationError(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newGenerationError(shared.ErrModelContext, err)
	}
	return newGenerationError(shared.ErrModelUnknown, err)
}

// StartupError means the model could not be loaded. It is fatal: the process
// must not start serving.
type StartupError struct {
	Model string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Model, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}
