// Domain-level sentinel errors for the cognify service.
// These errors are used with errors.Is() for error type checking.
package domain

import (
	"errors"
	"fmt"
)

// Authentication and aggregation errors
var (
	// ErrNotAuthenticated indicates a missing, invalid, or expired Canvas
	// token. Fatal for the whole request; never retried.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoReadableContent indicates the aggregation pipeline produced an
	// empty corpus. Deliberately generic: the caller cannot distinguish
	// "all fetches failed" from "nothing selected".
	ErrNoReadableContent = errors.New("no readable content found in the selected items")
)

// Upload errors
var (
	// ErrUnsupportedFileType indicates an upload whose content type matches
	// no registered decoder.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoExtractableText indicates a decodable upload that yielded only
	// whitespace.
	ErrNoExtractableText = errors.New("could not extract text from this file")

	// ErrUploadTooLarge indicates an upload over the size limit.
	ErrUploadTooLarge = errors.New("file too large")
)

// CanvasAPIError is a non-2xx response from the Canvas REST API. List
// callers during discovery treat it as "zero items"; the top-level listing
// call surfaces it to the user.
type CanvasAPIError struct {
	Status int
	Path   string
}

func (e *CanvasAPIError) Error() string {
	return fmt.Sprintf("canvas API error: %d on %s", e.Status, e.Path)
}

// IsAuthFailure reports whether the upstream rejected the bearer token.
func (e *CanvasAPIError) IsAuthFailure() bool {
	return e.Status == 401
}
