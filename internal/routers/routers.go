// Package routers wires the product routes onto echo
package routers

import (
	"io"
	"net/http"

	"careermind-api/internal/ctx"
	"careermind-api/internal/middleware"
	"careermind-api/internal/shared"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxJSONBody caps roadmap request bodies
const maxJSONBody = 1 << 20

type ServerConfig struct {
	MetricsAPIKey string
}

// NewServer builds the echo instance with the operational routes and returns
// the group product routes must be registered on.
func NewServer(cfg ServerConfig, log *zap.SugaredLogger) (*echo.Echo, *echo.Group) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Applied on echo itself rather than the group so unknown paths and
	// wrong methods keep echo's 404 and 405 answers
	e.Use(emw.CORS())
	e.Use(middleware.NewRecoverMiddleware(log))
	e.Use(middleware.NewTrackMiddleware(log))

	e.GET("/ping", func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.RequireAPIKey(cfg.MetricsAPIKey))

	return e, e.Group("")
}

func readRequestBody(c *ctx.Context, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, limit))
	if err != nil {
		c.Log.Debugw("Failed to read request body", "error", err.Error())
		return nil, err
	}
	return body, nil
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, shared.ErrorResponse{Error: msg})
}
