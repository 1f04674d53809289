package worker

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-gaucho/internal/analysis"
	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/rubric"
	"github.com/ahrav/go-gaucho/internal/workflow"
	pkgactivity "github.com/ahrav/go-gaucho/pkg/activity"
)

const eventSource = "worker"

// Persister appends an agreed analysis record to its category log.
// analysis.Service implements it.
type Persister interface {
	Persist(ctx context.Context, rec domain.AnalysisRecord) (domain.RecordRef, error)
}

// Activities are the units of work scheduled by the consensus workflows.
// Every ExecuteStep or Validate call is one independent execution of a
// divergent step.
type Activities struct {
	pkgactivity.BaseActivities
	steps     *analysis.StepExecutor
	judge     judge.Judge
	persister Persister
}

// NewActivities wires the activity set.
func NewActivities(
	base pkgactivity.BaseActivities,
	steps *analysis.StepExecutor,
	j judge.Judge,
	persister Persister,
) *Activities {
	return &Activities{BaseActivities: base, steps: steps, judge: j, persister: persister}
}

// ExecuteStep runs one execution of the requested step. Analysis steps never
// fail; rubric steps fail with the judge error classified for retry.
func (a *Activities) ExecuteStep(ctx context.Context, in workflow.StepInput) (string, error) {
	a.RecordHeartbeat(ctx, string(in.Kind))
	switch in.Kind {
	case workflow.StepAnalysis:
		return a.steps.Execute(ctx, in.URL), nil
	case workflow.StepRubric:
		out, err := rubric.Operation(a.judge, in.Task).Execute(ctx)
		if err != nil {
			return "", judgeError(err, "rubric step")
		}
		return out, nil
	default:
		return "", nonRetryable(workflow.ErrTypeValidation, fmt.Errorf("step kind %q", in.Kind), "unknown step")
	}
}

// Propose turns the leader's execution into the round's candidate.
func (a *Activities) Propose(ctx context.Context, in workflow.ProposeInput) (string, error) {
	policy, err := a.policy(in.Policy)
	if err != nil {
		return "", err
	}
	candidate, err := policy.Propose(ctx, in.Raw)
	if err != nil {
		return "", judgeError(err, "proposal")
	}
	return candidate, nil
}

// Validate performs a validator's own execution and votes on the candidate.
// A vote the judge cannot answer counts as a rejection.
func (a *Activities) Validate(ctx context.Context, in workflow.ValidateInput) (bool, error) {
	policy, err := a.policy(in.Policy)
	if err != nil {
		return false, err
	}
	raw, err := a.ExecuteStep(ctx, in.Step)
	if err != nil {
		return false, err
	}

	accept, err := policy.Vote(ctx, raw, in.Candidate)
	if err != nil {
		if retryableJudgeError(err) {
			return false, retryable(workflow.ErrTypeJudge, err, "vote")
		}
		pkgactivity.SafeLogWarn(ctx, "Vote counted as reject", "policy", in.Policy.Kind, "error", err)
		return false, nil
	}
	return accept, nil
}

// AppendRecord routes and stores an agreed record. Store failures are
// retried by Temporal.
func (a *Activities) AppendRecord(ctx context.Context, rec domain.AnalysisRecord) (domain.RecordRef, error) {
	ref, err := a.persister.Persist(ctx, rec)
	if err != nil {
		return domain.RecordRef{}, retryable(workflow.ErrTypeStore, err, "append record")
	}
	pkgactivity.SafeLog(ctx, "Record appended", "category", ref.Category, "index", ref.Index)
	return ref, nil
}

// ReportConsensusFailure emits consensus.failed.
func (a *Activities) ReportConsensusFailure(ctx context.Context, p domain.ConsensusFailedPayload) error {
	a.Emit(ctx, string(domain.EventTypeConsensusFailed), eventSource, "", p)
	return nil
}

// ReportEvaluation emits rubric.evaluated.
func (a *Activities) ReportEvaluation(ctx context.Context, r workflow.EvaluationReport) error {
	a.Emit(ctx, string(domain.EventTypeRubricEvaluated), eventSource, r.Key, r.Payload)
	return nil
}

func (a *Activities) policy(in workflow.PolicyInput) (consensus.Policy, error) {
	p, err := consensus.NewPolicy(in.Kind, a.judge, in.Task, in.Criteria)
	if err != nil {
		return nil, nonRetryable(workflow.ErrTypeValidation, err, "invalid policy")
	}
	return p, nil
}

func retryableJudgeError(err error) bool {
	return judge.IsRetryable(err) || errors.Is(err, judge.ErrCircuitOpen)
}

// judgeError classifies a judge failure for Temporal: transient provider
// errors are retried, everything else fails the attempt for good.
func judgeError(err error, msg string) error {
	if retryableJudgeError(err) {
		return retryable(workflow.ErrTypeJudge, err, msg)
	}
	return nonRetryable(workflow.ErrTypeJudge, err, msg)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal retryable application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
