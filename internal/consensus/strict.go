package consensus

import (
	"context"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/ahrav/go-gaucho/internal/judge"
)

// StrictPolicy accepts a candidate only when every validator's own execution
// canonicalizes to exactly the same bytes. Outputs must be JSON documents;
// comparison is on RFC 8785 canonical form, so key order, insignificant
// whitespace and number spelling do not count as divergence.
type StrictPolicy struct{}

// NewStrictPolicy returns the strict equivalence policy.
func NewStrictPolicy() StrictPolicy { return StrictPolicy{} }

// Kind implements Policy.
func (StrictPolicy) Kind() Kind { return KindStrict }

// Propose canonicalizes the leader's output. Output that is not JSON cannot be
// compared strictly and fails the round.
func (StrictPolicy) Propose(_ context.Context, raw string) (string, error) {
	return Canonicalize(raw)
}

// Vote accepts when the validator's output canonicalizes to the candidate.
// Non-JSON output is a divergence, not an error.
func (StrictPolicy) Vote(_ context.Context, raw, candidate string) (bool, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return false, nil
	}
	return canonical == candidate, nil
}

// Quorum implements Policy: every validator must agree.
func (StrictPolicy) Quorum(validators int) int { return validators }

// Canonicalize returns the RFC 8785 canonical form of a JSON document after
// stripping the markdown fences models commonly wrap around JSON.
func Canonicalize(raw string) (string, error) {
	out, err := jcs.Transform([]byte(judge.CleanJSON(raw)))
	if err != nil {
		return "", fmt.Errorf("canonicalize output: %w", err)
	}
	return string(out), nil
}
