// Package shared
package shared

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// ExtractAPIKey reads a bearer key of APIKeyLength characters from the
// Authorization header.
func ExtractAPIKey(c echo.Context) (string, error) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if auth == "" {
		return "", ErrMissingAuth
	}

	scheme, key, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.Contains(key, " ") {
		return "", ErrInvalidFormat
	}
	if len(key) != APIKeyLength {
		return "", ErrInvalidKeyLen
	}
	return key, nil
}
