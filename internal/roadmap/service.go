// Package roadmap turns a career goal, current skills and a learning
// preference into a generated learning roadmap.
package roadmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careermind-api/internal/inference"
	"careermind-api/internal/metrics"
	"careermind-api/internal/shared"
	"careermind-api/internal/slots"

	"go.uber.org/zap"
)

const (
	MsgWelcome          = "Welcome to the Roadmap Generator API!"
	MsgInvalidRequest   = "All fields (career_goal, skills, learning_preference) are required."
	MsgGenerationFailed = "An error occurred while generating the roadmap."
)

// Generator is the model call. *inference.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, policy inference.DecodingPolicy) (string, error)
}

type Config struct {
	// Model labels metrics and logs
	Model   string
	Timeout time.Duration
}

// Service is created once at startup and shared by every request. It holds
// no mutable state of its own.
type Service struct {
	gen     Generator
	limiter slots.Limiter
	policy  inference.DecodingPolicy
	cfg     Config
	log     *zap.SugaredLogger
}

func NewService(gen Generator, limiter slots.Limiter, cfg Config, log *zap.SugaredLogger) (*Service, error) {
	if gen == nil {
		return nil, errors.New("roadmap service needs a generator")
	}
	if limiter == nil {
		limiter = slots.NewLocalLimiter(0)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = shared.DefaultGenerationTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		gen:     gen,
		limiter: limiter,
		policy:  inference.RoadmapPolicy(),
		cfg:     cfg,
		log:     log,
	}, nil
}

// Result carries what happened on a request beyond the roadmap itself, for
// logs and metrics.
type Result struct {
	Roadmap  string
	Prompt   string
	Duration time.Duration
}

// Generate validates body, builds the prompt and runs one generation.
// Errors are either *InvalidRequestError, returned before the model is
// touched, or *inference.GenerationError.
func (s *Service) Generate(ctx context.Context, body []byte) (*Result, error) {
	req, err := ParseRequest(body)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(req)
	return s.generate(ctx, prompt)
}

func (s *Service) generate(ctx context.Context, prompt string) (*Result, error) {
	res := &Result{Prompt: prompt}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	waitStart := time.Now()
	release, err := s.limiter.Acquire(ctx)
	metrics.SlotWait.WithLabelValues(s.cfg.Model).Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return res, s.fail(&inference.GenerationError{
			Code: shared.ErrSlotTimeout.Code,
			Err:  fmt.Errorf("%w: %w", shared.ErrSlotTimeout, err),
		})
	}
	defer release()

	metrics.InflightGenerations.WithLabelValues(s.cfg.Model).Inc()
	defer metrics.InflightGenerations.WithLabelValues(s.cfg.Model).Dec()

	start := time.Now()
	text, err := s.invoke(ctx, prompt)
	res.Duration = time.Since(start)
	metrics.GenerationDuration.WithLabelValues(s.cfg.Model).Observe(res.Duration.Seconds())
	if err != nil {
		return res, s.fail(inference.AsGenerationError(err))
	}

	metrics.GenerationCount.WithLabelValues(s.cfg.Model, "success").Inc()
	res.Roadmap = text
	return res, nil
}

// invoke keeps a panicking generator from escaping the service.
func (s *Service) invoke(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &inference.GenerationError{
				Code: shared.ErrModelPanic.Code,
				Err:  fmt.Errorf("%w: %v", shared.ErrModelPanic, r),
			}
		}
	}()
	return s.gen.Generate(ctx, prompt, s.policy)
}

func (s *Service) fail(gerr *inference.GenerationError) *inference.GenerationError {
	s.log.Debugw("Roadmap generation failed", "code", gerr.Code, "error", gerr.Err)
	metrics.GenerationCount.WithLabelValues(s.cfg.Model, "failure").Inc()
	metrics.ErrorCount.WithLabelValues(s.cfg.Model, "generate-roadmap", gerr.Code).Inc()
	return gerr
}
