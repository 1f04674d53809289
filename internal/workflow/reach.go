package workflow

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-gaucho/internal/consensus"
)

// activityOptions applies to every activity of both workflows. Step
// executions may render a page and call the judge, so the timeout is generous.
func activityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				ErrTypeValidation,
				ErrTypeInvalidResponse,
			},
		},
	}
}

func normalize(cfg consensus.Config) consensus.Config {
	if cfg == (consensus.Config{}) {
		return consensus.DefaultConfig()
	}
	if cfg.MaxRounds < 1 {
		cfg.MaxRounds = 1
	}
	if cfg.Validators < 0 {
		cfg.Validators = 0
	}
	return cfg
}

// reach is the workflow form of consensus.Validator.Reach. The leader runs
// first; the validators of a round then run as parallel activities and are
// tallied in submission order so replays see the same decision.
func reach(ctx workflow.Context, cfg consensus.Config, step StepInput, policy PolicyInput) (consensus.Outcome, error) {
	cfg = normalize(cfg)
	rule, err := consensus.NewPolicy(policy.Kind, nil, policy.Task, policy.Criteria)
	if err != nil {
		return consensus.Outcome{}, temporal.NewNonRetryableApplicationError("unknown policy", ErrTypeValidation, err)
	}
	quorum := rule.Quorum(cfg.Validators)
	logger := workflow.GetLogger(ctx)

	var lastErr error
	for round := 1; round <= cfg.MaxRounds; round++ {
		out, err := runRound(ctx, cfg.Validators, quorum, round, step, policy)
		if err == nil {
			logger.Info("consensus reached", "round", round, "accepts", out.Accepts, "rejects", out.Rejects)
			return out, nil
		}
		if ctx.Err() != nil {
			return consensus.Outcome{}, ctx.Err()
		}
		logger.Warn("consensus round failed", "round", round, "error", err)
		lastErr = err
	}
	return consensus.Outcome{}, &consensus.NoConsensusError{Policy: policy.Kind, Rounds: cfg.MaxRounds, Cause: lastErr}
}

func runRound(ctx workflow.Context, validators, quorum, round int, step StepInput, policy PolicyInput) (consensus.Outcome, error) {
	var raw string
	if err := workflow.ExecuteActivity(ctx, ActivityExecuteStep, step).Get(ctx, &raw); err != nil {
		return consensus.Outcome{}, fmt.Errorf("leader execution: %w", err)
	}
	var candidate string
	if err := workflow.ExecuteActivity(ctx, ActivityPropose, ProposeInput{Policy: policy, Raw: raw}).Get(ctx, &candidate); err != nil {
		return consensus.Outcome{}, fmt.Errorf("leader proposal: %w", err)
	}

	futures := make([]workflow.Future, validators)
	for i := range futures {
		futures[i] = workflow.ExecuteActivity(ctx, ActivityValidate, ValidateInput{Step: step, Policy: policy, Candidate: candidate})
	}

	out := consensus.Outcome{Canonical: candidate, Policy: policy.Kind, Round: round, Validators: validators}
	decision := consensus.Decide(0, 0, validators, quorum)
	for _, f := range futures {
		if decision != consensus.DecisionPending {
			break
		}
		var accept bool
		if err := f.Get(ctx, &accept); err != nil || !accept {
			out.Rejects++
		} else {
			out.Accepts++
		}
		decision = consensus.Decide(out.Accepts, out.Rejects, validators, quorum)
	}

	if decision != consensus.DecisionAccepted {
		return consensus.Outcome{}, consensus.RoundRejectedError(out.Accepts, out.Rejects, quorum)
	}
	return out, nil
}

func asNoConsensus(err error) (*consensus.NoConsensusError, bool) {
	var nce *consensus.NoConsensusError
	ok := errors.As(err, &nce)
	return nce, ok
}

// noConsensusError converts a reach failure into the workflow's error.
func noConsensusError(err error) error {
	if nce, ok := asNoConsensus(err); ok {
		return temporal.NewNonRetryableApplicationError(nce.Error(), ErrTypeNoConsensus, err)
	}
	return err
}
