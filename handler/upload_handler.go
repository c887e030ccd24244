package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cognify/decoder"
	"cognify/domain"
	"cognify/repository"
)

// Uploads above this size are rejected before decoding.
const maxUploadBytes = 25 << 20

// UploadHandler ingests user documents into the short-lived upload store.
type UploadHandler struct {
	uploads  repository.UploadRepository
	decoders *decoder.Registry
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploads repository.UploadRepository, decoders *decoder.Registry, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, decoders: decoders, logger: logger}
}

// UploadResponse identifies a stored upload for later selection.
type UploadResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleUpload handles POST /api/v1/uploads. The document text is
// extracted immediately; only the text is kept, never the raw bytes.
func (h *UploadHandler) HandleUpload(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}
	if fileHeader.Size > maxUploadBytes {
		return domain.ErrUploadTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open uploaded file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload")
	}
	defer file.Close()

	// Size in the part header is client-supplied; enforce the cap on the
	// actual bytes too.
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read uploaded file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload")
	}
	if len(content) > maxUploadBytes {
		return domain.ErrUploadTooLarge
	}

	contentType := fileHeader.Header.Get("Content-Type")
	text, err := h.decoders.ExtractText(contentType, fileHeader.Filename, content)
	if err != nil {
		return err
	}

	id := h.uploads.Put(fileHeader.Filename, text)
	h.logger.InfoContext(ctx, "stored upload",
		"upload_id", id,
		"name", fileHeader.Filename,
		"bytes", len(content),
		"text_chars", len(text))

	return c.JSON(http.StatusCreated, UploadResponse{ID: id, Name: fileHeader.Filename})
}
