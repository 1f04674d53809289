package consensus

import (
	"context"
	"fmt"

	"github.com/ahrav/go-gaucho/internal/judge"
)

// Kind names an equivalence policy.
type Kind string

const (
	// KindStrict requires identical canonical outputs.
	KindStrict Kind = "strict"

	// KindNonComparative requires validators to judge the leader's candidate
	// acceptable against a criteria string.
	KindNonComparative Kind = "non_comparative"
)

// Operation is a divergent computation. Each call to Execute is one
// independent execution; results may differ between calls.
type Operation interface {
	Execute(ctx context.Context) (string, error)
}

// OperationFunc adapts a function to Operation.
type OperationFunc func(ctx context.Context) (string, error)

// Execute implements Operation.
func (f OperationFunc) Execute(ctx context.Context) (string, error) { return f(ctx) }

// Policy is the reconciliation strategy for a divergent Operation.
//
// Within a round the leader's raw execution is turned into a candidate with
// Propose. Every validator then performs its own independent execution and
// calls Vote with that raw result and the candidate. The round succeeds when
// Quorum(validators) votes accept.
type Policy interface {
	Kind() Kind
	Propose(ctx context.Context, raw string) (string, error)
	Vote(ctx context.Context, raw, candidate string) (bool, error)
	Quorum(validators int) int
}

// Decision is the state of a round's tally.
type Decision int

const (
	// DecisionPending means more votes are needed.
	DecisionPending Decision = iota
	// DecisionAccepted means quorum was reached.
	DecisionAccepted
	// DecisionRejected means quorum can no longer be reached.
	DecisionRejected
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAccepted:
		return "accepted"
	case DecisionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decide evaluates a tally of votes among validators against quorum. It is
// pure and deterministic, which makes it safe to call from workflow code.
// Validators that have not voted yet count as potential accepts.
func Decide(accepts, rejects, validators, quorum int) Decision {
	if accepts >= quorum {
		return DecisionAccepted
	}
	if validators-rejects < quorum {
		return DecisionRejected
	}
	return DecisionPending
}

// NewPolicy builds the policy named by kind. Task and criteria only apply to
// KindNonComparative. Hosts that need just the quorum rule may pass a nil
// judge.
func NewPolicy(kind Kind, j judge.Judge, task, criteria string) (Policy, error) {
	switch kind {
	case KindStrict:
		return NewStrictPolicy(), nil
	case KindNonComparative:
		return NewNonComparativePolicy(j, task, criteria), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, kind)
	}
}
