package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gaucho/internal/consensus"
)

// TestDecide covers the tally rules shared by the in-process host and the
// workflow host, including early acceptance and early rejection.
func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		accepts    int
		rejects    int
		validators int
		quorum     int
		want       consensus.Decision
	}{
		{"no validators strict", 0, 0, 0, 0, consensus.DecisionAccepted},
		{"all pending", 0, 0, 3, 3, consensus.DecisionPending},
		{"strict unanimous", 3, 0, 3, 3, consensus.DecisionAccepted},
		{"strict one reject", 1, 1, 3, 3, consensus.DecisionRejected},
		{"majority reached early", 2, 0, 3, 2, consensus.DecisionAccepted},
		{"majority still possible", 1, 1, 3, 2, consensus.DecisionPending},
		{"majority impossible", 0, 2, 3, 2, consensus.DecisionRejected},
		{"even split rejected", 1, 1, 2, 2, consensus.DecisionRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := consensus.Decide(tt.accepts, tt.rejects, tt.validators, tt.quorum)
			assert.Equal(t, tt.want, got, "decision %s", got)
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", consensus.DecisionPending.String())
	assert.Equal(t, "accepted", consensus.DecisionAccepted.String())
	assert.Equal(t, "rejected", consensus.DecisionRejected.String())
	assert.Equal(t, "unknown", consensus.Decision(42).String())
}

func TestQuorum(t *testing.T) {
	strict := consensus.NewStrictPolicy()
	nc := consensus.NewNonComparativePolicy(nil, "task", "criteria")

	for _, n := range []int{0, 1, 2, 3, 4, 5} {
		assert.Equal(t, n, strict.Quorum(n))
	}
	assert.Equal(t, 0, nc.Quorum(0))
	assert.Equal(t, 1, nc.Quorum(1))
	assert.Equal(t, 2, nc.Quorum(2))
	assert.Equal(t, 2, nc.Quorum(3))
	assert.Equal(t, 3, nc.Quorum(4))
}

func TestNewPolicy(t *testing.T) {
	p, err := consensus.NewPolicy(consensus.KindStrict, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, consensus.KindStrict, p.Kind())
	assert.Equal(t, 3, p.Quorum(3))

	p, err = consensus.NewPolicy(consensus.KindNonComparative, nil, "task", "criteria")
	require.NoError(t, err)
	assert.Equal(t, consensus.KindNonComparative, p.Kind())
	assert.Equal(t, 2, p.Quorum(3))

	_, err = consensus.NewPolicy("fuzzy", nil, "", "")
	assert.ErrorIs(t, err, consensus.ErrUnknownPolicy)
}
