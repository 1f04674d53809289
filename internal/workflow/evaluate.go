package workflow

import (
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/rubric"
)

// EvaluateWorkflow scores a free-text description against the rubric under
// the strict policy. Nothing is persisted.
func EvaluateWorkflow(ctx workflow.Context, in EvaluateInput) (domain.EvaluationResult, error) {
	// Version gate enables safe evolution and backward compatibility.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "evaluate.v", workflow.DefaultVersion, currentVersion)

	req := in.Request
	if err := req.Validate(); err != nil {
		return domain.EvaluationResult{}, temporal.NewNonRetryableApplicationError(
			"invalid evaluation request",
			ErrTypeValidation,
			err,
		)
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions())
	task := rubric.BuildTask(req)
	out, err := reach(ctx, in.Consensus,
		StepInput{Kind: StepRubric, Task: task},
		PolicyInput{Kind: consensus.KindStrict})
	if err != nil {
		reportFailure(ctx, err, "")
		return domain.EvaluationResult{}, noConsensusError(err)
	}

	res, err := rubric.ParseResult(out.Canonical)
	if err != nil {
		return domain.EvaluationResult{}, temporal.NewNonRetryableApplicationError(
			"invalid rubric response",
			ErrTypeInvalidResponse,
			err,
		)
	}

	report := EvaluationReport{
		Key: domain.GenerateIdempotencyKey(out.Canonical, ":"+task),
		Payload: domain.RubricEvaluatedPayload{
			Score:         res.Score,
			MessageLength: res.MessageLength(),
			TagCount:      len(req.Tags),
		},
	}
	if err := workflow.ExecuteActivity(ctx, ActivityReportEvaluation, report).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("report evaluation", "error", err)
	}
	return res, nil
}
