// Package ats reviews a resume against a job description through a hosted
// generative model, either as an HR manager would or as an applicant
// tracking system scan.
package ats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const MsgAnalysisFailed = "An error occurred while analyzing the resume."

// InputError is a problem with the caller's input. Its message is safe to
// return to the caller.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *InputError) Unwrap() error {
	return e.Err
}

type Input struct {
	Resume         []byte
	JobDescription string
	Role           string
	Mode           Mode
}

type Analyzer struct {
	model   ContentModel
	prompts Prompts
	log     *zap.SugaredLogger
}

func NewAnalyzer(model ContentModel, prompts Prompts, log *zap.SugaredLogger) *Analyzer {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Analyzer{model: model, prompts: prompts, log: log}
}

// Analyze returns the model's review. Errors are *InputError for bad input
// and wrapped model errors otherwise.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (string, error) {
	if in.Mode == "" {
		in.Mode = ModeHRReview
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return "", &InputError{Msg: "role is required"}
	}
	jobDescription := strings.TrimSpace(in.JobDescription)
	if jobDescription == "" {
		return "", &InputError{Msg: "job_description is required"}
	}
	instruction, err := a.prompts.Render(in.Mode, role)
	if err != nil {
		known := make([]string, 0, len(a.prompts))
		for _, m := range a.prompts.Modes() {
			known = append(known, string(m))
		}
		return "", &InputError{Msg: fmt.Sprintf("unknown analysis mode %q, want one of %s", in.Mode, strings.Join(known, ", "))}
	}
	resumeText, err := ExtractResumeText(in.Resume)
	if err != nil {
		if errors.Is(err, ErrEmptyResume) {
			return "", &InputError{Msg: "resume has no readable text", Err: err}
		}
		return "", &InputError{Msg: "resume must be a readable PDF", Err: err}
	}

	// Same part order as the dashboard used: job description, resume, instruction
	out, err := a.model.GenerateContent(ctx, jobDescription, resumeText, instruction)
	if err != nil {
		return "", fmt.Errorf("analyze resume: %w", err)
	}
	a.log.Debugw("Resume analyzed", "mode", in.Mode, "resume_chars", len(resumeText), "output_chars", len(out))
	return out, nil
}
