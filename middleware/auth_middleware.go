// Canvas bearer-token extraction. Every authenticated route reads the
// user's Canvas access token from the Authorization header; nothing is
// stored server-side.
package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"cognify/domain"
)

const tokenContextKey = "canvas_token"

// RequireCanvasToken rejects requests without a Bearer token and stashes
// the token on the echo context for handlers.
func RequireCanvasToken(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.WarnContext(c.Request().Context(), "request without canvas token",
					"path", c.Request().URL.Path)
				return domain.ErrNotAuthenticated
			}
			c.Set(tokenContextKey, strings.TrimSpace(token))
			return next(c)
		}
	}
}

// CanvasToken returns the bearer token stored by RequireCanvasToken, or
// an empty string on unauthenticated routes.
func CanvasToken(c echo.Context) string {
	if token, ok := c.Get(tokenContextKey).(string); ok {
		return token
	}
	return ""
}
