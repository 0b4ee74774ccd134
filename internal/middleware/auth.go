// Package middleware holds the echo middleware shared by every route group
package middleware

import (
	"crypto/subtle"

	"careermind-api/internal/shared"

	"github.com/labstack/echo/v4"
)

// RequireAPIKey guards operational routes such as /metrics. Product routes
// stay open.
func RequireAPIKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey, err := shared.ExtractAPIKey(c)
			if err != nil {
				return c.String(401, "Missing or invalid API key")
			}
			if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
				return c.String(401, "Unauthorized API key")
			}
			return next(c)
		}
	}
}
