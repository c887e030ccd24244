package retry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fastConfig() Config {
	return Config{
		MaxAttempts:   3,
		BaseDelay:     time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

func TestRetrier_Do(t *testing.T) {
	retryTransient := func(err error) bool {
		return strings.Contains(err.Error(), "transient")
	}

	tests := map[string]struct {
		operation     func() error
		expectedCalls int
		wantErr       bool
	}{
		"success on first attempt": {
			operation:     func() error { return nil },
			expectedCalls: 1,
		},
		"success on second attempt": {
			operation: func() func() error {
				attempt := 0
				return func() error {
					attempt++
					if attempt == 1 {
						return errors.New("transient error")
					}
					return nil
				}
			}(),
			expectedCalls: 2,
		},
		"failure after max attempts": {
			operation:     func() error { return errors.New("transient error") },
			expectedCalls: 3,
			wantErr:       true,
		},
		"non-retryable error fails immediately": {
			operation:     func() error { return errors.New("bad request") },
			expectedCalls: 1,
			wantErr:       true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			calls := 0
			wrapped := func() error {
				calls++
				return tc.operation()
			}

			r := NewRetrier(fastConfig(), retryTransient, testLogger())
			err := r.Do(context.Background(), wrapped)

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedCalls, calls)
		})
	}
}

func TestRetrier_DoWrapsLastError(t *testing.T) {
	sentinel := errors.New("transient upstream failure")
	r := NewRetrier(fastConfig(), func(error) bool { return true }, testLogger())

	err := r.Do(context.Background(), func() error { return sentinel })

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestRetrier_DoRespectsContext(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = time.Second
	cfg.MaxDelay = time.Second
	r := NewRetrier(cfg, func(error) bool { return true }, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := r.Do(ctx, func() error { return errors.New("always fails") })

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "must not sit out the backoff")
}

func TestCalculateDelayBounds(t *testing.T) {
	cfg := Config{
		MaxAttempts:   5,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
	r := NewRetrier(cfg, nil, testLogger())

	for attempt := 1; attempt <= 5; attempt++ {
		d := r.calculateDelay(attempt)
		assert.Greater(t, d, time.Duration(0))
		// MaxDelay plus the widest possible jitter.
		assert.LessOrEqual(t, d, time.Duration(float64(cfg.MaxDelay)*1.1)+time.Millisecond)
	}
}
