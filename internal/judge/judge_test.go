package judge_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/judge"
)

func TestChainOrder(t *testing.T) {
	var trace []string
	mark := func(name string) judge.Middleware {
		return func(next judge.Judge) judge.Judge {
			return judge.Func(func(ctx context.Context, p judge.Prompt) (string, error) {
				trace = append(trace, name)
				return next.Invoke(ctx, p)
			})
		}
	}
	base := judge.Func(func(context.Context, judge.Prompt) (string, error) {
		trace = append(trace, "provider")
		return "ok", nil
	})

	out, err := judge.Chain(base, mark("a"), mark("b")).Invoke(context.Background(), judge.Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"a", "b", "provider"}, trace)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"a\":1}```", `{"a":1}`},
		{"```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"not json at all", "not json at all"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.in, "\n", `\n`), func(t *testing.T) {
			assert.Equal(t, tt.want, judge.CleanJSON(tt.in))
		})
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := judge.Func(func(ctx context.Context, _ judge.Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := judge.TimeoutMiddleware(1)(slow).Invoke(context.Background(), judge.Prompt{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, judge.IsRetryable(err))
}

func TestConfigResolveAPIKey(t *testing.T) {
	t.Setenv("GAUCHO_TEST_KEY", "from-env")

	cfg := judge.DefaultConfig()
	cfg.APIKeyEnv = "GAUCHO_TEST_KEY"
	assert.Equal(t, "from-env", cfg.ResolveAPIKey())

	cfg.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.ResolveAPIKey())
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := judge.DefaultConfig()
	cfg.Provider = "carrier-pigeon"
	_, err := judge.New(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, judge.ErrUnknownProvider)
}

func TestNewOpenAIMissingKey(t *testing.T) {
	cfg := judge.DefaultConfig()
	cfg.Provider = judge.ProviderOpenAI
	cfg.APIKeyEnv = "GAUCHO_TEST_UNSET_KEY"
	_, err := judge.New(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, judge.ErrMissingAPIKey)
}
