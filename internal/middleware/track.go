package middleware

import (
	"fmt"
	"time"

	"careermind-api/internal/ctx"
	"careermind-api/internal/metrics"
	"careermind-api/internal/shared"

	"github.com/aidarkhanov/nanoid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func NewTrackMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID, _ := nanoid.Generate(requestIDAlphabet, 28)
			reqID = "req_" + reqID
			externalID := c.Request().Header.Get(echo.HeaderXRequestID)
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)

			logValues := &ctx.ContextLogValues{
				RequestID:  reqID,
				ExternalID: externalID,
				StartTime:  time.Now(),
				Path:       c.Path(),
			}
			cc := &ctx.Context{
				Context:   c,
				Log:       log.With("request_id", reqID),
				Reqid:     reqID,
				LogValues: logValues,
			}

			err := next(cc)
			if err != nil {
				// Let echo write the error response so the status code below is final
				c.Error(err)
				logValues.AddError(err)
			}

			logValues.RequestDuration = time.Since(logValues.StartTime)
			logValues.StatusCode = cc.Response().Status
			logEndOfRequest(log, logValues)

			metrics.RequestDuration.WithLabelValues(logValues.Path).Observe(logValues.RequestDuration.Seconds())
			metrics.ResponseCodes.WithLabelValues(logValues.Path, fmt.Sprintf("%d", logValues.StatusCode)).Inc()
			return nil
		}
	}
}

func logEndOfRequest(log *zap.SugaredLogger, lv *ctx.ContextLogValues) {
	level := zapcore.InfoLevel
	if lv.StatusCode >= 500 {
		level = zapcore.ErrorLevel
	}
	if lv.LogLevel != "" {
		if parsed, err := zapcore.ParseLevel(lv.LogLevel); err == nil {
			level = parsed
		}
	}
	log.Desugar().Check(level, "end_of_request").Write(zap.Object("request", lv))
}

func NewRecoverMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			defer func() {
				_ = log.Sync()
			}()
			log.Errorw("Api Panic", "error", err.Error(), "stack", string(stack))
			return c.JSON(500, shared.ErrorResponse{Error: shared.ErrInternalServerError.Err.Error()})
		},
	})
}
