package consensus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/consensus"
)

func TestCanonicalize(t *testing.T) {
	a, err := consensus.Canonicalize(`{"score": 80, "message": "ok"}`)
	require.NoError(t, err)
	b, err := consensus.Canonicalize("```json\n{\"message\":\"ok\",\"score\":80.0}\n```")
	require.NoError(t, err)

	assert.Equal(t, `{"message":"ok","score":80}`, a)
	assert.Equal(t, a, b)

	_, err = consensus.Canonicalize("score: 80")
	assert.Error(t, err)
}

func TestStrictPolicy(t *testing.T) {
	ctx := context.Background()
	p := consensus.NewStrictPolicy()
	assert.Equal(t, consensus.KindStrict, p.Kind())

	candidate, err := p.Propose(ctx, `{"b":1,"a":2}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, candidate)

	ok, err := p.Vote(ctx, "{\n  \"a\": 2,\n  \"b\": 1\n}", candidate)
	require.NoError(t, err)
	assert.True(t, ok, "reordered keys must agree")

	ok, err = p.Vote(ctx, `{"a":3,"b":1}`, candidate)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Vote(ctx, "not json", candidate)
	require.NoError(t, err, "unparseable output is a divergence")
	assert.False(t, ok)

	_, err = p.Propose(ctx, "not json")
	assert.Error(t, err)
}
