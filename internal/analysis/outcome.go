package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-gaucho/internal/judge"
)

// Outcome is the parsed form of a canonical analysis output: either Parsed
// or Unparseable.
type Outcome interface {
	outcome()
}

// Parsed is a canonical output carrying a category and a score. Category is
// the judge's raw key and may be unrecognized. Score is kept exactly as the
// judge wrote it; only its presence is checked.
type Parsed struct {
	Category string
	Score    json.RawMessage
	HasMatch *bool
}

// NumericScore returns the score when it is a JSON number.
func (p Parsed) NumericScore() (float64, bool) {
	var f float64
	if err := json.Unmarshal(p.Score, &f); err != nil || isNull(p.Score) {
		return 0, false
	}
	return f, true
}

// Unparseable is a canonical output without the required structure.
type Unparseable struct {
	Reason string
}

func (Parsed) outcome()      {}
func (Unparseable) outcome() {}

// verdict is the scored JSON the scoring task asks for.
type verdict struct {
	Category  *string         `json:"category"`
	Score     json.RawMessage `json:"score"`
	HasMatch  *bool           `json:"has_match"`
	Reasoning string          `json:"reasoning"`
}

// ParseOutcome reads canonical. Markdown fences are stripped first; the rest
// must be a JSON object with a string category and a non-null score of any
// JSON type.
func ParseOutcome(canonical string) Outcome {
	var v verdict
	if err := json.Unmarshal([]byte(judge.CleanJSON(canonical)), &v); err != nil {
		return Unparseable{Reason: fmt.Sprintf("not a JSON verdict: %v", err)}
	}
	switch {
	case v.Category == nil:
		return Unparseable{Reason: "missing category"}
	case isNull(v.Score):
		return Unparseable{Reason: "missing score"}
	}
	return Parsed{Category: *v.Category, Score: v.Score, HasMatch: v.HasMatch}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
