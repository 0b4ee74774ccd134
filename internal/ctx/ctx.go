// Package ctx
package ctx

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogValues should only be accessed for logging, and not for
// actual business logic, or any other logic
type ContextLogValues struct {
	// Added in base middleware
	RequestID       string
	ExternalID      string
	StartTime       time.Time
	StatusCode      int
	RequestDuration time.Duration
	Path            string

	// Added by the roadmap router
	Generation *GenerationInfo

	// Override log Log Level
	// useful when a handler answers with a non-5xx status but still wants
	// the line surfaced as an error
	LogLevel string

	// Added dynamically
	Error error
}

// GenerationInfo describes the model call behind a request.
type GenerationInfo struct {
	Model        string
	PromptLength int
	OutputLength int
	Duration     time.Duration
	FailureCode  string
}

func (g *GenerationInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("model", g.Model)
	enc.AddInt("prompt_length", g.PromptLength)
	enc.AddInt("output_length", g.OutputLength)
	enc.AddDuration("duration", g.Duration)
	if g.FailureCode != "" {
		enc.AddString("failure_code", g.FailureCode)
	}
	return nil
}

// AddError adds errors to the error chain. Always add errors, even if only warnings.
// Log level is determined by the status code of the reuqest
func (c *ContextLogValues) AddError(err error) {
	if err == nil {
		return
	}
	if c.Error == nil {
		c.Error = err
		return
	}
	c.Error = fmt.Errorf("%w: %w", err, c.Error)
}

func (c *ContextLogValues) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("request_id", c.RequestID)
	enc.AddString("external_id", c.ExternalID)
	enc.AddTime("start_time", c.StartTime)
	enc.AddDuration("request_duration", c.RequestDuration)
	enc.AddInt("status_code", c.StatusCode)
	if c.Error != nil {
		enc.AddString("error", c.Error.Error())
	}
	enc.AddString("path", c.Path)
	if c.Generation != nil {
		if err := enc.AddObject("generation", c.Generation); err != nil {
			return err
		}
	}
	return nil
}

type Context struct {
	echo.Context
	Log       *zap.SugaredLogger
	Reqid     string
	LogValues *ContextLogValues
}
