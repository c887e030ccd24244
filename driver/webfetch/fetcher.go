// Package webfetch downloads third-party documents: instructor-hosted
// pages, Google Drive exports, and direct file links. Fetches are
// unauthenticated, rate limited, and bounded in both time and size.
package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"cognify/retry"
)

const (
	fetchTimeout = 15 * time.Second

	// maxBodyBytes caps a single downloaded document. Anything larger is
	// not lecture material.
	maxBodyBytes = 25 << 20

	userAgent = "cognify/1.0 (+study content fetcher)"
)

// ErrBodyTooLarge indicates a response body over the download cap.
var ErrBodyTooLarge = errors.New("response body too large")

// Result is one fetched document. ContentType comes from the response
// header, not the URL, so a Drive export advertising text/plain dispatches
// correctly even with a .pdf-looking URL.
type Result struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetcher downloads external URLs with retries and a global rate limit.
// Safe for concurrent use.
type Fetcher struct {
	http    *http.Client
	limiter *rate.Limiter
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewFetcher creates a fetcher allowing rps requests per second with the
// given burst.
func NewFetcher(rps float64, burst int, logger *slog.Logger) *Fetcher {
	classifier := func(err error) bool {
		var statusErr *statusError
		if errors.As(err, &statusErr) {
			return statusErr.status >= 500 || statusErr.status == http.StatusTooManyRequests
		}
		if errors.Is(err, ErrBodyTooLarge) {
			return false
		}
		// Network-level failures are worth another attempt.
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	return &Fetcher{
		http:    &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		retrier: retry.NewRetrier(retry.DefaultConfig(), classifier, logger),
		logger:  logger,
	}
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.url, e.status)
}

// Fetch downloads one URL, following redirects. Non-2xx responses and
// bodies over the size cap fail; transient failures are retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var result *Result
	err := f.retrier.Do(ctx, func() error {
		r, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetched external document",
		"url", url, "content_type", result.ContentType, "bytes", len(result.Body))
	return result, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, url: url}
	}

	limited := io.LimitReader(resp.Body, maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s", ErrBodyTooLarge, url)
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}
