package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognify/domain"
)

func runErrorHandler(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(slog.New(slog.DiscardHandler))(err, c)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		"not authenticated": {
			err:        domain.ErrNotAuthenticated,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "NOT_AUTHENTICATED",
		},
		"wrapped not authenticated": {
			err:        fmt.Errorf("list courses: %w", domain.ErrNotAuthenticated),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "NOT_AUTHENTICATED",
		},
		"canvas 401": {
			err:        &domain.CanvasAPIError{Status: 401, Path: "/courses"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "NOT_AUTHENTICATED",
		},
		"canvas 500": {
			err:        &domain.CanvasAPIError{Status: 500, Path: "/courses"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "CANVAS_ERROR",
		},
		"no readable content": {
			err:        domain.ErrNoReadableContent,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NO_READABLE_CONTENT",
		},
		"unsupported upload": {
			err:        domain.ErrUnsupportedFileType,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_UPLOAD",
		},
		"upload too large": {
			err:        domain.ErrUploadTooLarge,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_UPLOAD",
		},
		"echo 4xx keeps its message": {
			err:        echo.NewHTTPError(http.StatusBadRequest, "Invalid course id"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "HTTP_ERROR",
		},
		"unknown error becomes 500": {
			err:        errors.New("pgx: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			status, resp := runErrorHandler(t, tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHTTPErrorHandlerHidesInternals(t *testing.T) {
	_, resp := runErrorHandler(t, errors.New("password=hunter2 leaked"))
	assert.NotContains(t, resp.Error.Message, "hunter2")

	_, resp = runErrorHandler(t, echo.NewHTTPError(http.StatusInternalServerError, "stack trace here"))
	assert.NotContains(t, resp.Error.Message, "stack trace")
}

func TestHTTPErrorHandlerEchoMessagePassthrough(t *testing.T) {
	status, resp := runErrorHandler(t, echo.NewHTTPError(http.StatusBadRequest, "Invalid course id"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid course id", resp.Error.Message)
}
