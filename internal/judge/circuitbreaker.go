package judge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// CircuitBreakerConfig controls fail-fast protection against a failing provider.
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold" validate:"gte=0"`
	SuccessThreshold int           `yaml:"success_threshold" validate:"gte=0"`
	OpenTimeout      time.Duration `yaml:"open_timeout"      validate:"gte=0"`
}

// CircuitState is the breaker state.
type CircuitState int

const (
	// StateClosed allows all requests through.
	StateClosed CircuitState = iota
	// StateOpen rejects requests until the open timeout elapses.
	StateOpen
	// StateHalfOpen admits a single probe at a time.
	StateHalfOpen
)

// String returns the state name used in logs.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips after FailureThreshold consecutive retryable failures
// and recovers after SuccessThreshold successful half-open probes. Only
// provider-side failures count; validation errors say nothing about provider
// health.
type CircuitBreaker struct {
	cfg      CircuitBreakerConfig
	provider string
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     CircuitState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

// NewCircuitBreaker creates a closed breaker with defaults for zero fields.
func NewCircuitBreaker(cfg CircuitBreakerConfig, provider string, logger *slog.Logger) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreaker{
		cfg:      cfg,
		provider: provider,
		logger:   logger.With("component", "judge_circuit_breaker"),
		now:      time.Now,
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Middleware returns the breaker as a judge middleware.
func (cb *CircuitBreaker) Middleware(next Judge) Judge {
	return Func(func(ctx context.Context, prompt Prompt) (string, error) {
		if err := cb.allow(); err != nil {
			return "", err
		}
		out, err := next.Invoke(ctx, prompt)
		cb.record(err)
		return out, err
	})
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.OpenTimeout {
			return &ProviderError{
				Provider: cb.provider,
				Message:  fmt.Sprintf("%v until %s", ErrCircuitOpen, cb.openedAt.Add(cb.cfg.OpenTimeout).Format(time.RFC3339)),
				Type:     ErrorTypeCircuitBreaker,
			}
		}
		cb.transition(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if cb.probing {
			return &ProviderError{Provider: cb.provider, Message: "circuit breaker half-open probe in flight", Type: ErrorTypeCircuitBreaker}
		}
		cb.probing = true
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := err != nil && IsRetryable(err)
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.probing = false
		if failed {
			cb.transition(StateOpen)
			return
		}
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(StateClosed)
		}
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.probing = false
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	cb.logger.Info("circuit breaker state transition",
		"provider", cb.provider,
		"from", from.String(),
		"to", to.String())
}
