package judge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// newTestRetrier returns a retry middleware whose sleeps are recorded instead
// of taken.
func newTestRetrier(cfg RetryConfig) (Middleware, *[]time.Duration) {
	var slept []time.Duration
	r := &retrier{cfg: cfg, logger: discardLogger(), sleep: func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}}
	return r.middleware, &slept
}

// flaky fails with errs in order, then succeeds.
func flaky(calls *int, errs ...error) Judge {
	return Func(func(context.Context, Prompt) (string, error) {
		*calls++
		if *calls <= len(errs) {
			return "", errs[*calls-1]
		}
		return "ok", nil
	})
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2}
	mw, slept := newTestRetrier(cfg)

	calls := 0
	transient := &ProviderError{Provider: "p", Type: ErrorTypeProvider}
	out, err := mw(flaky(&calls, transient, transient)).Invoke(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *slept)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	mw, slept := newTestRetrier(DefaultRetryConfig())

	calls := 0
	auth := &ProviderError{Provider: "p", Type: ErrorTypeAuth}
	_, err := mw(flaky(&calls, auth)).Invoke(context.Background(), Prompt{})
	assert.Same(t, auth, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRetryExhausted(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, InitialInterval: time.Millisecond, Multiplier: 2}
	mw, _ := newTestRetrier(cfg)

	calls := 0
	transient := &ProviderError{Provider: "p", Type: ErrorTypeNetwork}
	_, err := mw(flaky(&calls, transient, transient, transient)).Invoke(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, calls)
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, InitialInterval: time.Millisecond, Multiplier: 2, UseJitter: true}
	mw, slept := newTestRetrier(cfg)

	calls := 0
	limited := &ProviderError{Provider: "p", Type: ErrorTypeRateLimit, RetryAfter: 7}
	_, err := mw(flaky(&calls, limited)).Invoke(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{7 * time.Second}, *slept)
}

func TestRetrySleepCanceled(t *testing.T) {
	r := &retrier{cfg: RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond}, logger: discardLogger(),
		sleep: func(context.Context, time.Duration) error { return context.Canceled }}

	calls := 0
	_, err := r.middleware(flaky(&calls, &ProviderError{Type: ErrorTypeTimeout})).Invoke(context.Background(), Prompt{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffCapsAtMaxInterval(t *testing.T) {
	r := &retrier{cfg: RetryConfig{InitialInterval: time.Second, MaxInterval: 3 * time.Second, Multiplier: 2}}
	plain := errors.New("x")
	assert.Equal(t, time.Second, r.backoff(1, plain))
	assert.Equal(t, 2*time.Second, r.backoff(2, plain))
	assert.Equal(t, 3*time.Second, r.backoff(3, plain))
	assert.Equal(t, 3*time.Second, r.backoff(10, plain))
}

func TestBackoffJitterBounded(t *testing.T) {
	r := &retrier{cfg: RetryConfig{InitialInterval: 100 * time.Millisecond, Multiplier: 2, UseJitter: true}}
	for i := 0; i < 50; i++ {
		d := r.backoff(2, errors.New("x"))
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
