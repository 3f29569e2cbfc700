package errors

import (
	"time"

	"classtop/internal/infrastructure/logging"
)

// WithRetryLogging returns a copy of config that logs each retry of op at Debug level
func WithRetryLogging(config *RetryConfig, logger logging.Logger, op string) *RetryConfig {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		return config
	}

	bridged := *config
	bridged.RetryableErrors = append([]ErrorCode(nil), config.RetryableErrors...)
	next := config.OnRetry
	bridged.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Debug("Retrying window operation",
			"command", op,
			"attempt", attempt,
			"max_attempts", bridged.MaxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error_code", CodeOf(err).String(),
			"error", err.Error())
		if next != nil {
			next(attempt, delay, err)
		}
	}
	return &bridged
}
