package errors

import (
	"context"
	"slices"
	"time"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // total attempts, including the first
	InitialDelay    time.Duration // delay before the second attempt
	MaxDelay        time.Duration // upper bound for any delay
	BackoffFactor   float64       // exponential backoff factor
	Jitter          bool          // add up to 25% jitter to each delay
	RetryableErrors []ErrorCode   // codes worth another attempt

	// OnRetry is called before sleeping ahead of another attempt
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig retries focus requests briefly; window managers often
// refuse activation until the map has been processed
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    50 * time.Millisecond,
		MaxDelay:        500 * time.Millisecond,
		BackoffFactor:   2.0,
		Jitter:          true,
		RetryableErrors: []ErrorCode{ErrCodeFocus},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry runs operation until it succeeds, returns a non-retryable error,
// or runs out of attempts. The last error is returned unchanged so callers
// keep the toolkit's description.
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err, config) || attempt == attempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)
		if config.OnRetry != nil {
			config.OnRetry(attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}

	return lastErr
}

// shouldRetry reports whether err carries one of the configured codes
func shouldRetry(err error, config *RetryConfig) bool {
	code := CodeOf(err)
	if code == ErrCodeUnknown {
		return false
	}
	return slices.Contains(config.RetryableErrors, code)
}

// calculateDelay returns the exponential backoff delay for attempt
func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for range attempt {
		multiplier *= config.BackoffFactor
	}

	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	if config.Jitter && delay > 0 {
		jitterAmount := time.Duration(float64(delay) * 0.25)
		if jitterAmount > 0 {
			delay += time.Duration(time.Now().UnixNano() % int64(jitterAmount))
		}
	}

	if config.MaxDelay > 0 {
		delay = min(delay, config.MaxDelay)
	}
	return delay
}
