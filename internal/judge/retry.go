package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls retry behavior for transient judge failures.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"     validate:"gte=1"`
	InitialInterval time.Duration `yaml:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `yaml:"max_interval"     validate:"gte=0"`
	Multiplier      float64       `yaml:"multiplier"       validate:"gte=1"`
	UseJitter       bool          `yaml:"use_jitter"`
}

// DefaultRetryConfig returns conservative retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		UseJitter:       true,
	}
}

// ErrMaxRetriesExceeded wraps the last error once every attempt has failed.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// retrier holds the backoff policy and the sleep function, which tests replace.
type retrier struct {
	cfg    RetryConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// RetryMiddleware retries retryable failures with exponential backoff and
// optional full jitter. Provider Retry-After hints take precedence over the
// computed delay. Non-retryable errors are returned immediately.
func RetryMiddleware(cfg RetryConfig, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	r := &retrier{cfg: cfg, logger: logger.With("component", "judge_retry"), sleep: sleepContext}
	return r.middleware
}

func (r *retrier) middleware(next Judge) Judge {
	return Func(func(ctx context.Context, prompt Prompt) (string, error) {
		attempts := r.cfg.MaxAttempts
		if attempts < 1 {
			attempts = 1
		}

		var lastErr error
		for attempt := 1; attempt <= attempts; attempt++ {
			out, err := next.Invoke(ctx, prompt)
			if err == nil {
				return out, nil
			}
			lastErr = err
			if !IsRetryable(err) || attempt == attempts {
				break
			}

			delay := r.backoff(attempt, err)
			r.logger.WarnContext(ctx, "retrying judge call",
				"operation", prompt.Operation,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
				"error", err,
			)
			if err := r.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		if IsRetryable(lastErr) && attempts > 1 {
			return "", fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempts, lastErr)
		}
		return "", lastErr
	})
}

// backoff computes the delay before the next attempt.
func (r *retrier) backoff(attempt int, err error) time.Duration {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if after := provErr.GetRetryAfter(); after > 0 {
			return after
		}
	}

	base := r.cfg.InitialInterval
	if base <= 0 {
		base = time.Millisecond // Minimum 1ms to prevent hot loop.
	}
	multiplier := r.cfg.Multiplier
	if multiplier < 1.0 {
		multiplier = 1.0
	}
	for i := 1; i < attempt; i++ {
		base = time.Duration(float64(base) * multiplier)
		if r.cfg.MaxInterval > 0 && base > r.cfg.MaxInterval {
			base = r.cfg.MaxInterval
			break
		}
	}

	if r.cfg.UseJitter {
		jitterMs := rand.Int64N(base.Milliseconds() + 1) // #nosec G404 -- non-cryptographic jitter is appropriate here
		return time.Duration(jitterMs) * time.Millisecond
	}
	return base
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
