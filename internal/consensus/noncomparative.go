package consensus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahrav/go-gaucho/internal/judge"
)

// NonComparativePolicy reconciles free-text or creative outputs. The leader
// applies Task to its own execution through the judge; each validator asks
// the judge whether that candidate satisfies Criteria given the validator's
// independent execution. A strict majority of validators must accept.
type NonComparativePolicy struct {
	Task     string
	Criteria string
	Judge    judge.Judge

	// ProposeOperation labels the leader's judge call. Defaults to OpScoring.
	ProposeOperation judge.Operation
}

// NewNonComparativePolicy builds the policy around j.
func NewNonComparativePolicy(j judge.Judge, task, criteria string) *NonComparativePolicy {
	return &NonComparativePolicy{Task: task, Criteria: criteria, Judge: j, ProposeOperation: judge.OpScoring}
}

// Kind implements Policy.
func (p *NonComparativePolicy) Kind() Kind { return KindNonComparative }

// Propose asks the judge to perform Task on the leader's execution.
func (p *NonComparativePolicy) Propose(ctx context.Context, raw string) (string, error) {
	op := p.ProposeOperation
	if op == "" {
		op = judge.OpScoring
	}
	out, err := p.Judge.Invoke(ctx, judge.Prompt{
		Operation: op,
		Text:      leaderPrompt(p.Task, raw),
		Format:    judge.FormatText,
	})
	if err != nil {
		return "", fmt.Errorf("leader proposal: %w", err)
	}
	out = judge.CleanJSON(out)
	if out == "" {
		return "", ErrEmptyCandidate
	}
	return out, nil
}

// Vote asks the judge whether candidate is an acceptable result of Task given
// the validator's own execution raw.
func (p *NonComparativePolicy) Vote(ctx context.Context, raw, candidate string) (bool, error) {
	out, err := p.Judge.Invoke(ctx, judge.Prompt{
		Operation: judge.OpEquivalence,
		Text:      validatorPrompt(p.Task, p.Criteria, raw, candidate),
		Format:    judge.FormatJSON,
	})
	if err != nil {
		return false, fmt.Errorf("validator vote: %w", err)
	}
	return ParseVerdict(out)
}

// Quorum implements Policy: a strict majority of validators.
func (p *NonComparativePolicy) Quorum(validators int) int {
	if validators <= 0 {
		return 0
	}
	return validators/2 + 1
}

// verdict is the validator's structured answer.
type verdict struct {
	Accept *bool  `json:"accept"`
	Reason string `json:"reason"`
}

// ParseVerdict reads a validator answer of the form {"accept": bool}. A bare
// "yes"/"no" answer is tolerated; anything else is an error, which hosts
// count as a rejecting vote.
func ParseVerdict(out string) (bool, error) {
	cleaned := judge.CleanJSON(out)
	var v verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil && v.Accept != nil {
		return *v.Accept, nil
	}
	switch strings.ToLower(strings.Trim(cleaned, " \t\r\n.!\"")) {
	case "yes", "true", "accept":
		return true, nil
	case "no", "false", "reject":
		return false, nil
	}
	return false, fmt.Errorf("unreadable validator verdict: %q", truncate(cleaned, 80))
}

func leaderPrompt(task, input string) string {
	var b strings.Builder
	b.WriteString("You are given an INPUT produced by an earlier step and a TASK to perform on it.\n")
	b.WriteString("Perform the TASK using only the INPUT and respond with the result only.\n\n")
	b.WriteString("TASK:\n")
	b.WriteString(task)
	b.WriteString("\n\nINPUT:\n")
	b.WriteString(input)
	b.WriteString("\n")
	return b.String()
}

func validatorPrompt(task, criteria, input, candidate string) string {
	var b strings.Builder
	b.WriteString("You are validating a result that another participant produced by performing a TASK on an INPUT.\n")
	b.WriteString("Your INPUT was obtained independently and may differ in wording from theirs.\n")
	b.WriteString("Decide whether the CANDIDATE RESULT is an acceptable outcome of the TASK for your INPUT ")
	b.WriteString("according to the CRITERIA. It does not need to match what you would have written word for word.\n\n")
	b.WriteString("TASK:\n")
	b.WriteString(task)
	b.WriteString("\n\nCRITERIA:\n")
	b.WriteString(criteria)
	b.WriteString("\n\nINPUT:\n")
	b.WriteString(input)
	b.WriteString("\n\nCANDIDATE RESULT:\n")
	b.WriteString(candidate)
	b.WriteString("\n\nRespond ONLY with JSON: {\"accept\": true or false, \"reason\": \"short reason\"}\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
