package routers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"careermind-api/internal/ats"
	"careermind-api/internal/ctx"
	"careermind-api/internal/metrics"
	"careermind-api/internal/shared"

	"github.com/labstack/echo/v4"
)

const (
	formResume         = "resume"
	formJobDescription = "job_description"
	formRole           = "role"
	formMode           = "mode"
)

// ResumeAnalyzer is satisfied by *ats.Analyzer
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, in ats.Input) (string, error)
}

type AnalysisResponse struct {
	Analysis string `json:"analysis"`
}

type ATSRouter struct {
	analyzer ResumeAnalyzer
}

func RegisterATSRoutes(e *echo.Group, analyzer ResumeAnalyzer) error {
	if analyzer == nil {
		return errors.New("ats routes need an analyzer")
	}
	ar := &ATSRouter{analyzer: analyzer}
	e.POST("/ats/analyze", ar.Analyze)
	return nil
}

func (ar *ATSRouter) Analyze(cc echo.Context) error {
	c := cc.(*ctx.Context)
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, shared.MaxResumeBytes+1<<20)

	in := ats.Input{
		JobDescription: c.FormValue(formJobDescription),
		Role:           c.FormValue(formRole),
		Mode:           ats.Mode(c.FormValue(formMode)),
	}
	if in.Mode == "" {
		in.Mode = ats.ModeHRReview
	}
	resume, err := readResume(c)
	if err == nil {
		in.Resume = resume
		var out string
		out, err = ar.analyzer.Analyze(c.Request().Context(), in)
		if err == nil {
			metrics.AnalysisCount.WithLabelValues(modeLabel(in.Mode), "success").Inc()
			return c.JSON(200, AnalysisResponse{Analysis: out})
		}
	}

	c.LogValues.AddError(err)
	var inputErr *ats.InputError
	if errors.As(err, &inputErr) {
		metrics.AnalysisCount.WithLabelValues(modeLabel(in.Mode), "rejected").Inc()
		return errorJSON(c, 400, inputErr.Msg)
	}
	// Upstream model failures log at warn
	c.LogValues.LogLevel = "WARN"
	metrics.AnalysisCount.WithLabelValues(modeLabel(in.Mode), "failure").Inc()
	return errorJSON(c, 500, ats.MsgAnalysisFailed)
}

// readResume errors are always *ats.InputError
func readResume(c *ctx.Context) ([]byte, error) {
	fh, err := c.FormFile(formResume)
	if err != nil {
		return nil, &ats.InputError{Msg: "resume file is required", Err: err}
	}
	if fh.Size > shared.MaxResumeBytes {
		return nil, &ats.InputError{Msg: "resume file is too large"}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, &ats.InputError{Msg: "resume file could not be read", Err: err}
	}
	defer func() {
		_ = f.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(f, shared.MaxResumeBytes))
	if err != nil {
		return nil, &ats.InputError{Msg: "resume file could not be read", Err: err}
	}
	return data, nil
}

func modeLabel(m ats.Mode) string {
	switch m {
	case ats.ModeHRReview, ats.ModeATSMatch:
		return string(m)
	}
	return "unknown"
}
