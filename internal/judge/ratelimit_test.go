package judge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/judge"
)

func okJudge(calls *int) judge.Judge {
	return judge.Func(func(context.Context, judge.Prompt) (string, error) {
		*calls++
		return "ok", nil
	})
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	calls := 0
	j := judge.RateLimitMiddleware(judge.RateLimitConfig{}, "p")(okJudge(&calls))
	for i := 0; i < 10; i++ {
		_, err := j.Invoke(context.Background(), judge.Prompt{})
		require.NoError(t, err)
	}
	assert.Equal(t, 10, calls)
}

func TestRateLimitWaitFailsWhenContextEnds(t *testing.T) {
	calls := 0
	cfg := judge.RateLimitConfig{Enabled: true, TokensPerSecond: 0.001, BurstSize: 1}
	j := judge.RateLimitMiddleware(cfg, "p")(okJudge(&calls))

	_, err := j.Invoke(context.Background(), judge.Prompt{})
	require.NoError(t, err, "burst admits the first call")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = j.Invoke(ctx, judge.Prompt{})

	var pe *judge.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, judge.ErrorTypeRateLimit, pe.Type)
	assert.Equal(t, 1, calls)
}
