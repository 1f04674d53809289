package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/render"
	"github.com/ahrav/go-gaucho/internal/store"
	"github.com/ahrav/go-gaucho/pkg/events"
)

const eventSource = "analysis"

// Service hosts the analysis entry points on the in-process consensus host.
type Service struct {
	steps   *StepExecutor
	judge   judge.Judge
	reacher consensus.Reacher
	store   store.CategoryStore
	sink    events.EventSink
	logger  *slog.Logger
}

// NewService wires a service. A nil sink disables events.
func NewService(
	r render.Renderer,
	j judge.Judge,
	reacher consensus.Reacher,
	st store.CategoryStore,
	sink events.EventSink,
	logger *slog.Logger,
) *Service {
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		steps:   NewStepExecutor(r, j, logger),
		judge:   j,
		reacher: reacher,
		store:   st,
		sink:    sink,
		logger:  logger.With("component", "analysis"),
	}
}

// AnalyzeImage analyzes req.URL under consensus and appends the canonical
// verdict to the routed category log. When consensus fails nothing is
// stored and the error matches consensus.ErrNoConsensus.
func (s *Service) AnalyzeImage(ctx context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error) {
	if err := req.Validate(); err != nil {
		return domain.RecordRef{}, err
	}

	out, err := s.reacher.Reach(ctx, s.steps.Operation(req.URL, req.Defense), ScoringPolicy(s.judge, req.Defense))
	if err != nil {
		var nce *consensus.NoConsensusError
		if errors.As(err, &nce) {
			EmitConsensusFailed(ctx, s.sink, s.logger, nce, req.URL)
		}
		return domain.RecordRef{}, fmt.Errorf("analyze %s: %w", req.URL, err)
	}

	return s.Persist(ctx, domain.NewAnalysisRecord(out.Canonical, req.Caller, req.Defense, req.URL))
}

// Persist routes rec by its consensus output and appends it. The Temporal
// workflow calls this after reaching consensus on its own.
func (s *Service) Persist(ctx context.Context, rec domain.AnalysisRecord) (domain.RecordRef, error) {
	outcome := ParseOutcome(rec.ConsensusOutput)
	category := Route(outcome)
	if u, ok := outcome.(Unparseable); ok {
		s.logger.InfoContext(ctx, "unparseable verdict routed to catch-all", "reason", u.Reason, "url", rec.URL)
	}

	idx, err := s.store.Append(ctx, category, rec)
	if err != nil {
		return domain.RecordRef{}, fmt.Errorf("append to %s: %w", category, err)
	}
	ref := domain.RecordRef{Category: category, Index: idx}

	s.logger.InfoContext(ctx, "analysis stored",
		"category", category,
		"index", idx,
		"caller", rec.CallerAddress.Hex())
	emit(ctx, s.sink, s.logger, domain.EventTypeRecordAppended, domain.RecordAppendedIdempotencyKey(ref), appendedPayload(ref, rec, outcome))
	return ref, nil
}

// GetAnalysisByCategory returns a page of the log named by category. Unknown
// names read the catch-all log.
func (s *Service) GetAnalysisByCategory(ctx context.Context, category string, start, count int) (domain.Page, error) {
	return s.store.Read(ctx, domain.ResolveCategory(category), start, count)
}

func appendedPayload(ref domain.RecordRef, rec domain.AnalysisRecord, o Outcome) domain.RecordAppendedPayload {
	p := domain.RecordAppendedPayload{
		Category:      ref.Category,
		Index:         ref.Index,
		CallerAddress: rec.CallerAddress.Hex(),
		URL:           rec.URL,
	}
	if parsed, ok := o.(Parsed); ok {
		p.Parsed = true
		if score, ok := parsed.NumericScore(); ok {
			p.Score = int(score)
		}
	}
	return p
}

// EmitConsensusFailed records a rejected analysis.
func EmitConsensusFailed(ctx context.Context, sink events.EventSink, logger *slog.Logger, nce *consensus.NoConsensusError, url string) {
	emit(ctx, sink, logger, domain.EventTypeConsensusFailed, "", domain.ConsensusFailedPayload{
		Policy: string(nce.Policy),
		Rounds: nce.Rounds,
		Reason: nce.Error(),
		URL:    url,
	})
}

// emit delivers an event best effort.
func emit(ctx context.Context, sink events.EventSink, logger *slog.Logger, typ domain.EventType, key string, payload any) {
	env, err := events.NewEnvelope(string(typ), eventSource, key, payload)
	if err != nil {
		logger.ErrorContext(ctx, "build event", "type", typ, "error", err)
		return
	}
	if err := sink.Append(ctx, env); err != nil {
		logger.WarnContext(ctx, "emit event", "type", typ, "error", err)
	}
}
