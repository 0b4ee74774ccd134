package routers

import (
	"errors"

	"careermind-api/internal/ctx"
	"careermind-api/internal/inference"
	"careermind-api/internal/metrics"
	"careermind-api/internal/roadmap"
	"careermind-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type RoadmapResponse struct {
	Roadmap string `json:"roadmap"`
}

type RoadmapRouter struct {
	svc   *roadmap.Service
	model string
}

func RegisterRoadmapRoutes(e *echo.Group, svc *roadmap.Service, model string) error {
	if svc == nil {
		return errors.New("roadmap routes need a service")
	}
	rr := &RoadmapRouter{svc: svc, model: model}
	e.GET("/", rr.Welcome)
	e.POST("/generate-roadmap", rr.GenerateRoadmap)
	return nil
}

func (rr *RoadmapRouter) Welcome(c echo.Context) error {
	return c.JSON(200, shared.MessageResponse{Message: roadmap.MsgWelcome})
}

func (rr *RoadmapRouter) GenerateRoadmap(cc echo.Context) error {
	c := cc.(*ctx.Context)

	body, err := readRequestBody(c, maxJSONBody)
	if err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed reading roadmap request"), err))
		return errorJSON(c, 400, roadmap.MsgInvalidRequest)
	}

	res, err := rr.svc.Generate(c.Request().Context(), body)
	if res != nil {
		c.LogValues.Generation = &ctx.GenerationInfo{
			Model:        rr.model,
			PromptLength: len(res.Prompt),
			OutputLength: len(res.Roadmap),
			Duration:     res.Duration,
		}
	}
	if err == nil {
		return c.JSON(200, RoadmapResponse{Roadmap: res.Roadmap})
	}

	var invalid *roadmap.InvalidRequestError
	if errors.As(err, &invalid) {
		c.LogValues.AddError(invalid)
		return errorJSON(c, 400, roadmap.MsgInvalidRequest)
	}

	code := shared.ErrModelUnknown.Code
	var gerr *inference.GenerationError
	if errors.As(err, &gerr) {
		code = gerr.Code
	} else {
		metrics.ErrorCount.WithLabelValues(rr.model, "generate-roadmap", code).Inc()
	}
	if c.LogValues.Generation != nil {
		c.LogValues.Generation.FailureCode = code
	}
	c.LogValues.AddError(err)
	return errorJSON(c, 500, roadmap.MsgGenerationFailed)
}
