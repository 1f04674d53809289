package rubric

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/pkg/events"
)

const eventSource = "rubric"

// Operation returns the divergent step of an evaluation: one judge call
// with task, asking for a JSON response.
func Operation(j judge.Judge, task string) consensus.Operation {
	return consensus.OperationFunc(func(ctx context.Context) (string, error) {
		return j.Invoke(ctx, judge.Prompt{
			Operation: judge.OpRubric,
			Text:      task,
			Format:    judge.FormatJSON,
		})
	})
}

// Engine runs rubric evaluations on the in-process consensus host.
type Engine struct {
	judge   judge.Judge
	reacher consensus.Reacher
	sink    events.EventSink
	logger  *slog.Logger
}

// NewEngine wires an engine. A nil sink disables events.
func NewEngine(j judge.Judge, reacher consensus.Reacher, sink events.EventSink, logger *slog.Logger) *Engine {
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{judge: j, reacher: reacher, sink: sink, logger: logger.With("component", "rubric")}
}

// Evaluate scores req against the rubric. It performs no persistence.
// Invalid requests fail with domain.ErrInvalidRequest, disagreement with
// consensus.ErrNoConsensus and bad responses with this package's errors.
func (e *Engine) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	if err := req.Validate(); err != nil {
		return domain.EvaluationResult{}, err
	}

	task := BuildTask(req)
	out, err := e.reacher.Reach(ctx, Operation(e.judge, task), consensus.NewStrictPolicy())
	if err != nil {
		var nce *consensus.NoConsensusError
		if errors.As(err, &nce) {
			e.emit(ctx, domain.EventTypeConsensusFailed, "", domain.ConsensusFailedPayload{
				Policy: string(nce.Policy),
				Rounds: nce.Rounds,
				Reason: err.Error(),
			})
		}
		return domain.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}

	res, err := ParseResult(out.Canonical)
	if err != nil {
		e.logger.WarnContext(ctx, "rubric response rejected", "error", err, "round", out.Round)
		return domain.EvaluationResult{}, err
	}

	e.logger.InfoContext(ctx, "rubric evaluated",
		"score", res.Score,
		"message_length", res.MessageLength(),
		"tags", len(req.Tags),
		"round", out.Round)
	e.emit(ctx, domain.EventTypeRubricEvaluated, domain.GenerateIdempotencyKey(out.Canonical, ":"+task), domain.RubricEvaluatedPayload{
		Score:         res.Score,
		MessageLength: res.MessageLength(),
		TagCount:      len(req.Tags),
	})
	return res, nil
}

// emit delivers an event best effort. Sink failures never fail the call.
func (e *Engine) emit(ctx context.Context, typ domain.EventType, key string, payload any) {
	env, err := events.NewEnvelope(string(typ), eventSource, key, payload)
	if err != nil {
		e.logger.ErrorContext(ctx, "build event", "type", typ, "error", err)
		return
	}
	if err := e.sink.Append(ctx, env); err != nil {
		e.logger.WarnContext(ctx, "emit event", "type", typ, "error", err)
	}
}
