package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognify/domain"
)

func runAuthMiddleware(t *testing.T, authorization string) (string, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured string
	mw := RequireCanvasToken(slog.New(slog.DiscardHandler))
	err := mw(func(c echo.Context) error {
		captured = CanvasToken(c)
		return nil
	})(c)
	return captured, err
}

func TestRequireCanvasToken(t *testing.T) {
	token, err := runAuthMiddleware(t, "Bearer canvas-token-123")
	require.NoError(t, err)
	assert.Equal(t, "canvas-token-123", token)
}

func TestRequireCanvasTokenCaseInsensitiveScheme(t *testing.T) {
	token, err := runAuthMiddleware(t, "bearer canvas-token-123")
	require.NoError(t, err)
	assert.Equal(t, "canvas-token-123", token)
}

func TestRequireCanvasTokenRejections(t *testing.T) {
	tests := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Basic dXNlcjpwYXNz",
		"no token":         "Bearer ",
		"whitespace token": "Bearer    ",
		"bare token":       "canvas-token-123",
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runAuthMiddleware(t, header)
			assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		})
	}
}

func TestCanvasTokenWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, CanvasToken(c))
}
