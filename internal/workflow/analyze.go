package workflow

import (
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-gaucho/internal/analysis"
	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
)

// AnalyzeImageWorkflow analyzes an image URL under the non-comparative
// scoring policy and appends the canonical verdict to its category log.
func AnalyzeImageWorkflow(ctx workflow.Context, in AnalyzeImageInput) (domain.RecordRef, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "analyze_image.v", workflow.DefaultVersion, currentVersion)

	req := in.Request
	if err := req.Validate(); err != nil {
		return domain.RecordRef{}, temporal.NewNonRetryableApplicationError("invalid analyze request", ErrTypeValidation, err)
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions())
	out, err := reach(ctx, in.Consensus,
		StepInput{Kind: StepAnalysis, URL: req.URL},
		PolicyInput{
			Kind:     consensus.KindNonComparative,
			Task:     analysis.ScoringTask(req.Defense),
			Criteria: analysis.ScoringCriteria,
		})
	if err != nil {
		reportFailure(ctx, err, req.URL)
		return domain.RecordRef{}, noConsensusError(err)
	}

	var ref domain.RecordRef
	rec := domain.NewAnalysisRecord(out.Canonical, req.Caller, req.Defense, req.URL)
	if err := workflow.ExecuteActivity(ctx, ActivityAppendRecord, rec).Get(ctx, &ref); err != nil {
		return domain.RecordRef{}, err
	}
	return ref, nil
}

// reportFailure emits consensus.failed best effort.
func reportFailure(ctx workflow.Context, err error, url string) {
	nce, ok := asNoConsensus(err)
	if !ok {
		return
	}
	payload := domain.ConsensusFailedPayload{
		Policy: string(nce.Policy),
		Rounds: nce.Rounds,
		Reason: nce.Error(),
		URL:    url,
	}
	if err := workflow.ExecuteActivity(ctx, ActivityReportConsensusFailure, payload).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("report consensus failure", "error", err)
	}
}
