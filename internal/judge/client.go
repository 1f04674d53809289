package judge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config holds provider selection, credentials and resilience settings for the judge.
type Config struct {
	Provider    string            `yaml:"provider"    validate:"required,oneof=genai openai"`
	Model       string            `yaml:"model"`
	Endpoint    string            `yaml:"endpoint"`
	APIKeyEnv   string            `yaml:"api_key_env"`
	APIKey      string            `yaml:"-"` // Sensitive, never serialized.
	Temperature *float32          `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	Timeout     time.Duration     `yaml:"timeout"     validate:"gte=0"`
	Headers     map[string]string `yaml:"headers"`

	RedactPrompts  bool                 `yaml:"redact_prompts"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Retry          RetryConfig          `yaml:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// DefaultConfig returns a Gemini configuration with resilience enabled.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderGenAI,
		Model:     "gemini-2.5-flash",
		APIKeyEnv: "GEMINI_API_KEY",
		Timeout:   90 * time.Second,
		RateLimit: RateLimitConfig{Enabled: true, TokensPerSecond: 2, BurstSize: 4},
		Retry:     DefaultRetryConfig(),
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			SuccessThreshold: 1,
			OpenTimeout:      30 * time.Second,
		},
	}
}

// ResolveAPIKey returns the configured key, falling back to APIKeyEnv.
func (c Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// New builds the configured provider wrapped in the standard middleware chain:
// logging (outermost), retry, circuit breaker, rate limit, per-attempt timeout.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Judge, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(provider, cfg, logger), nil
}

// Wrap applies the standard middleware chain to an existing Judge.
func Wrap(provider Judge, cfg Config, logger *slog.Logger) Judge {
	middleware := []Middleware{
		LoggingMiddleware(logger, cfg.Provider, cfg.Model, cfg.RedactPrompts),
		RetryMiddleware(cfg.Retry, logger),
	}
	if cfg.CircuitBreaker.Enabled {
		middleware = append(middleware, NewCircuitBreaker(cfg.CircuitBreaker, cfg.Provider, logger).Middleware)
	}
	middleware = append(middleware,
		RateLimitMiddleware(cfg.RateLimit, cfg.Provider),
		TimeoutMiddleware(cfg.Timeout),
	)
	return Chain(provider, middleware...)
}

// TimeoutMiddleware bounds each attempt. A zero timeout leaves the context untouched.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Judge) Judge {
		if timeout <= 0 {
			return next
		}
		return Func(func(ctx context.Context, prompt Prompt) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next.Invoke(ctx, prompt)
		})
	}
}

func newProvider(ctx context.Context, cfg Config) (Judge, error) {
	apiKey := cfg.ResolveAPIKey()
	switch cfg.Provider {
	case ProviderGenAI:
		return NewGenAI(ctx, apiKey, cfg.Model, cfg.Temperature)
	case ProviderOpenAI:
		return NewOpenAI(cfg.Endpoint, apiKey, cfg.Model, cfg.Temperature, cfg.Headers, &http.Client{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
