package routers

import (
	"errors"
	"fmt"
	"strconv"

	"careermind-api/internal/ctx"
	"careermind-api/internal/market"
	"careermind-api/internal/metrics"
	"careermind-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type JobsResponse struct {
	Count int          `json:"count"`
	Jobs  []market.Job `json:"jobs"`
}

type MarketRouter struct {
	ds *market.Dataset
}

func RegisterMarketRoutes(e *echo.Group, ds *market.Dataset) error {
	if ds == nil {
		return errors.New("market routes need a dataset")
	}
	mr := &MarketRouter{ds: ds}
	g := e.Group("/job-market")
	g.GET("/summary", mr.Summary)
	g.GET("/locations", mr.TopLocations)
	g.GET("/companies", mr.TopCompanies)
	g.GET("/jobs", mr.Jobs)
	g.GET("/filters", mr.Filters)
	g.GET("/skills", mr.Skills)
	return nil
}

func (mr *MarketRouter) Summary(c echo.Context) error {
	metrics.MarketQueries.WithLabelValues("summary").Inc()
	return c.JSON(200, mr.ds.Summary())
}

func (mr *MarketRouter) TopLocations(cc echo.Context) error {
	c := cc.(*ctx.Context)
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		c.LogValues.AddError(err)
		return errorJSON(c, 400, err.Error())
	}
	metrics.MarketQueries.WithLabelValues("locations").Inc()
	return c.JSON(200, mr.ds.TopLocations(limit))
}

func (mr *MarketRouter) TopCompanies(cc echo.Context) error {
	c := cc.(*ctx.Context)
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		c.LogValues.AddError(err)
		return errorJSON(c, 400, err.Error())
	}
	metrics.MarketQueries.WithLabelValues("companies").Inc()
	return c.JSON(200, mr.ds.TopCompanies(limit))
}

func (mr *MarketRouter) Jobs(c echo.Context) error {
	params := c.QueryParams()
	jobs := mr.ds.Find(market.Filter{
		Companies:  params["company"],
		Experience: params["experience"],
	})
	metrics.MarketQueries.WithLabelValues("jobs").Inc()
	return c.JSON(200, JobsResponse{Count: len(jobs), Jobs: jobs})
}

func (mr *MarketRouter) Filters(c echo.Context) error {
	metrics.MarketQueries.WithLabelValues("filters").Inc()
	return c.JSON(200, mr.ds.Options())
}

func (mr *MarketRouter) Skills(c echo.Context) error {
	metrics.MarketQueries.WithLabelValues("skills").Inc()
	return c.JSON(200, mr.ds.SkillCategories())
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return shared.DefaultTopLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > shared.MaxTopLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", shared.MaxTopLimit)
	}
	return limit, nil
}
