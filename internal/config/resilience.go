package config

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Retry configuration constants
const (
	// CoC API request retry configuration
	APIRequestMaxAttempts       = 3
	APIRequestInitialWait       = 1 * time.Second
	APIRequestMaxWait           = 10 * time.Second
	APIRequestBackoffMultiplier = 2.0
	APIRequestTimeout           = 30 * time.Second

	// Sheet Read retry configuration
	SheetReadMaxAttempts       = 3
	SheetReadInitialWait       = 500 * time.Millisecond
	SheetReadMaxWait           = 5 * time.Second
	SheetReadBackoffMultiplier = 2.0
	SheetReadTimeout           = 30 * time.Second

	// Sheet Write retry configuration
	SheetWriteMaxAttempts       = 3
	SheetWriteInitialWait       = 1 * time.Second
	SheetWriteMaxWait           = 10 * time.Second
	SheetWriteBackoffMultiplier = 2.0
	SheetWriteTimeout           = 30 * time.Second
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	APIRequest RetryConfig
	SheetRead  RetryConfig
	SheetWrite RetryConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	APIRequest: RetryConfig{
		MaxAttempts: APIRequestMaxAttempts,
		InitialWait: APIRequestInitialWait,
		MaxWait:     APIRequestMaxWait,
		Multiplier:  APIRequestBackoffMultiplier,
		Timeout:     APIRequestTimeout,
	},
	SheetRead: RetryConfig{
		MaxAttempts: SheetReadMaxAttempts,
		InitialWait: SheetReadInitialWait,
		MaxWait:     SheetReadMaxWait,
		Multiplier:  SheetReadBackoffMultiplier,
		Timeout:     SheetReadTimeout,
	},
	SheetWrite: RetryConfig{
		MaxAttempts: SheetWriteMaxAttempts,
		InitialWait: SheetWriteInitialWait,
		MaxWait:     SheetWriteMaxWait,
		Multiplier:  SheetWriteBackoffMultiplier,
		Timeout:     SheetWriteTimeout,
	},
}

// NextWait computes the wait before the given 1-based attempt, applying the
// backoff multiplier and capping at MaxWait.
func (rc RetryConfig) NextWait(attempt int) time.Duration {
	wait := rc.InitialWait
	for i := 1; i < attempt; i++ {
		wait = time.Duration(float64(wait) * rc.Multiplier)
		if wait > rc.MaxWait {
			return rc.MaxWait
		}
	}
	if wait > rc.MaxWait {
		return rc.MaxWait
	}
	return wait
}

// permanentError marks an error that further attempts cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so WithRetry returns the underlying error immediately
// instead of retrying. Use it for responses like a 404 where repeating the
// request cannot change the outcome.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry runs op up to MaxAttempts times with exponential backoff between
// attempts. The context passed to op carries the per-attempt timeout. Errors
// wrapped with Permanent stop the attempts at once; otherwise the last error
// is returned when all attempts fail.
func WithRetry(ctx context.Context, rc RetryConfig, name string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if rc.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, rc.Timeout)
		}

		lastErr = op(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == rc.MaxAttempts {
			break
		}

		wait := rc.NextWait(attempt)
		log.Debug().
			Err(lastErr).
			Str("operation", name).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Operation failed, retrying after backoff")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}
