package judge

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitConfig controls the local token bucket placed in front of the provider.
type RateLimitConfig struct {
	Enabled         bool    `yaml:"enabled"`
	TokensPerSecond float64 `yaml:"tokens_per_second" validate:"gte=0"`
	BurstSize       int     `yaml:"burst_size"        validate:"gte=0"`
}

// RateLimitMiddleware blocks each call until the token bucket grants capacity
// or ctx ends. A consensus round issues one judge call per execution, so
// waiting smooths bursts instead of failing validators outright.
func RateLimitMiddleware(cfg RateLimitConfig, provider string) Middleware {
	if !cfg.Enabled || cfg.TokensPerSecond <= 0 {
		return func(next Judge) Judge { return next }
	}
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.TokensPerSecond), burst)

	return func(next Judge) Judge {
		return Func(func(ctx context.Context, prompt Prompt) (string, error) {
			if err := limiter.Wait(ctx); err != nil {
				return "", &ProviderError{
					Provider: provider,
					Message:  fmt.Sprintf("local rate limit wait: %v", err),
					Type:     ErrorTypeRateLimit,
				}
			}
			return next.Invoke(ctx, prompt)
		})
	}
}
