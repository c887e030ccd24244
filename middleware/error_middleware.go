// Centralized error handling for the echo server. Domain sentinels map to
// stable status codes and client-safe messages; everything unknown becomes
// a generic 500 so internals never leak.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cognify/domain"
	"cognify/utils/logger"
)

// ErrorResponse is the JSON body every failed request gets.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPErrorHandler builds the echo error handler.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		status, detail := classify(err)

		if status >= 500 {
			log.ErrorContext(ctx, "request failed",
				"request_id", logger.RequestIDFrom(ctx),
				"status", status,
				"error", err)
		} else {
			log.WarnContext(ctx, "request rejected",
				"request_id", logger.RequestIDFrom(ctx),
				"status", status,
				"code", detail.Code)
		}

		if err := c.JSON(status, ErrorResponse{Error: detail}); err != nil {
			log.ErrorContext(ctx, "failed to write error response", "error", err)
		}
	}
}

func classify(err error) (int, ErrorDetail) {
	var apiErr *domain.CanvasAPIError
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, ErrorDetail{
			Code:    "NOT_AUTHENTICATED",
			Message: "Canvas token is missing, invalid, or expired.",
		}

	case errors.As(err, &apiErr):
		if apiErr.IsAuthFailure() {
			return http.StatusUnauthorized, ErrorDetail{
				Code:    "NOT_AUTHENTICATED",
				Message: "Canvas token is missing, invalid, or expired.",
			}
		}
		return http.StatusBadGateway, ErrorDetail{
			Code:    "CANVAS_ERROR",
			Message: "Canvas returned an error for this request.",
		}

	case errors.Is(err, domain.ErrNoReadableContent):
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "NO_READABLE_CONTENT",
			Message: domain.ErrNoReadableContent.Error(),
		}

	case errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrNoExtractableText),
		errors.Is(err, domain.ErrUploadTooLarge):
		return http.StatusBadRequest, ErrorDetail{
			Code:    "INVALID_UPLOAD",
			Message: err.Error(),
		}

	case errors.As(err, &httpErr):
		message := "An error occurred."
		if m, ok := httpErr.Message.(string); ok && httpErr.Code < 500 {
			message = m
		}
		if httpErr.Code >= 500 {
			message = "An unexpected error occurred. Please try again later."
		}
		return httpErr.Code, ErrorDetail{Code: "HTTP_ERROR", Message: message}

	default:
		return http.StatusInternalServerError, ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred. Please try again later.",
		}
	}
}
