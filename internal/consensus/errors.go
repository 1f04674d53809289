package consensus

import (
	"errors"
	"fmt"
)

// ErrNoConsensus is returned when no round reached quorum within the budget.
var ErrNoConsensus = errors.New("consensus not reached")

// ErrRoundRejected is the cause recorded for a round whose validators
// rejected the leader's candidate.
var ErrRoundRejected = errors.New("round rejected by validators")

// ErrEmptyCandidate indicates a leader proposal that produced no output.
var ErrEmptyCandidate = errors.New("leader produced an empty candidate")

// ErrUnknownPolicy indicates a policy kind no host understands.
var ErrUnknownPolicy = errors.New("unknown consensus policy")

// NoConsensusError reports a rejected computation. It matches ErrNoConsensus
// with errors.Is and unwraps to the failure of the last round.
type NoConsensusError struct {
	Policy Kind
	Rounds int
	Cause  error
}

// Error implements error.
func (e *NoConsensusError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%v: %s policy, %d rounds", ErrNoConsensus, e.Policy, e.Rounds)
	}
	return fmt.Sprintf("%v: %s policy, %d rounds: %v", ErrNoConsensus, e.Policy, e.Rounds, e.Cause)
}

// Is makes errors.Is(err, ErrNoConsensus) hold.
func (e *NoConsensusError) Is(target error) bool { return target == ErrNoConsensus }

// Unwrap returns the last round's failure.
func (e *NoConsensusError) Unwrap() error { return e.Cause }

// RoundRejectedError records the vote split of a rejected round. Every host
// reports rejected rounds through it.
func RoundRejectedError(accepts, rejects, quorum int) error {
	return fmt.Errorf("%w: %d accepted, %d rejected, quorum %d", ErrRoundRejected, accepts, rejects, quorum)
}
