// Package reliability retries operations that fail for transient reasons.
package reliability

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig holds configuration for retry operations
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial attempt)
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Multiplier for exponential backoff
	Multiplier float64
	// Jitter is the fraction of the delay randomized in both directions
	Jitter float64
	// ShouldRetry reports whether err from the given 0-indexed attempt is worth retrying
	ShouldRetry func(err error, attempt int) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		ShouldRetry: func(err error, attempt int) bool {
			return IsTransient(err)
		},
		OnRetry: func(attempt int, delay time.Duration, err error) {},
	}
}

// ExponentialBackoffPolicy implements exponential backoff with jitter
type ExponentialBackoffPolicy struct {
	cfg RetryConfig
}

// NewExponentialBackoffPolicy creates a policy from config, filling unset
// fields from DefaultRetryConfig.
func NewExponentialBackoffPolicy(config RetryConfig) *ExponentialBackoffPolicy {
	defaults := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = defaults.InitialDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = defaults.MaxDelay
	}
	if config.Multiplier <= 0 {
		config.Multiplier = defaults.Multiplier
	}
	if config.Jitter < 0 || config.Jitter > 1 {
		config.Jitter = defaults.Jitter
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = defaults.ShouldRetry
	}
	if config.OnRetry == nil {
		config.OnRetry = defaults.OnRetry
	}
	return &ExponentialBackoffPolicy{cfg: config}
}

// NextDelay calculates the delay before the retry following attempt.
func (p *ExponentialBackoffPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	delay := float64(p.cfg.InitialDelay) * math.Pow(p.cfg.Multiplier, float64(attempt))
	if delay > float64(p.cfg.MaxDelay) {
		delay = float64(p.cfg.MaxDelay)
	}

	if p.cfg.Jitter > 0 {
		jitterRange := delay * p.cfg.Jitter
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// ShouldRetry determines if a retry should be attempted
func (p *ExponentialBackoffPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.cfg.MaxAttempts-1 {
		return false
	}
	return p.cfg.ShouldRetry(err, attempt)
}

// MaxAttempts returns the maximum number of attempts
func (p *ExponentialBackoffPolicy) MaxAttempts() int {
	return p.cfg.MaxAttempts
}

// Execute runs operation until it succeeds, returns a non-retryable error,
// runs out of attempts or ctx is done. The last error is returned.
func (p *ExponentialBackoffPolicy) Execute(ctx context.Context, operation func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !p.ShouldRetry(err, attempt) {
			break
		}

		delay := p.NextDelay(attempt)
		p.cfg.OnRetry(attempt+1, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// Retry executes operation with the default configuration.
func Retry(ctx context.Context, operation func(context.Context) error) error {
	return RetryWithConfig(ctx, operation, DefaultRetryConfig())
}

// RetryWithConfig executes operation with config.
func RetryWithConfig(ctx context.Context, operation func(context.Context) error, config RetryConfig) error {
	return NewExponentialBackoffPolicy(config).Execute(ctx, operation)
}

// IsTransient reports whether err looks temporary: a timeout, an error that
// says it is temporary, or a common network failure. Context cancellation is
// never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}

	return IsNetworkError(err)
}

// IsNetworkError checks if an error is network-related
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection refused",
		"connection reset",
		"no route to host",
		"network is unreachable",
		"i/o timeout",
		"temporary failure",
		"broken pipe",
	}
	for _, netErr := range networkErrors {
		if strings.Contains(msg, netErr) {
			return true
		}
	}
	return false
}
