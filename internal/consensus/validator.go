package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ahrav/go-gaucho/internal/consensus"

// Config sets the replication budget of a host.
type Config struct {
	// Validators is the number of independent re-executions per round,
	// not counting the leader.
	Validators int `yaml:"validators" validate:"gte=0,lte=32"`

	// MaxRounds bounds how many leaders are tried before giving up.
	MaxRounds int `yaml:"max_rounds" validate:"gte=1,lte=10"`
}

// DefaultConfig returns one leader plus two validators and three rounds.
func DefaultConfig() Config {
	return Config{Validators: 2, MaxRounds: 3}
}

// Outcome is an accepted canonical output and the tally that produced it.
type Outcome struct {
	Canonical  string `json:"canonical"`
	Policy     Kind   `json:"policy"`
	Round      int    `json:"round"`
	Accepts    int    `json:"accepts"`
	Rejects    int    `json:"rejects"`
	Validators int    `json:"validators"`
}

// Reacher drives a divergent Operation to a canonical Outcome.
// Validator implements it in-process; tests substitute fakes.
type Reacher interface {
	Reach(ctx context.Context, op Operation, policy Policy) (Outcome, error)
}

// Validator is the in-process host. It runs every execution sequentially on
// the calling goroutine and keeps no state between calls.
type Validator struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
}

var _ Reacher = (*Validator)(nil)

// NewValidator creates an in-process host. Zero MaxRounds means one round.
func NewValidator(cfg Config, logger *slog.Logger) *Validator {
	if cfg.MaxRounds < 1 {
		cfg.MaxRounds = 1
	}
	if cfg.Validators < 0 {
		cfg.Validators = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		cfg:    cfg,
		logger: logger.With("component", "consensus"),
		tracer: otel.Tracer(tracerName),
	}
}

// Reach runs rounds until one reaches quorum. Every failed round is retried
// with a fresh leader execution; after MaxRounds the computation is rejected
// with a *NoConsensusError. Context cancellation is returned as is.
func (v *Validator) Reach(ctx context.Context, op Operation, policy Policy) (Outcome, error) {
	var lastErr error
	for round := 1; round <= v.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		outcome, err := v.round(ctx, round, op, policy)
		if err == nil {
			v.logger.InfoContext(ctx, "consensus reached",
				"policy", policy.Kind(),
				"round", round,
				"accepts", outcome.Accepts,
				"validators", outcome.Validators)
			return outcome, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}

		lastErr = err
		v.logger.WarnContext(ctx, "consensus round failed",
			"policy", policy.Kind(),
			"round", round,
			"max_rounds", v.cfg.MaxRounds,
			"error", err)
	}

	return Outcome{}, &NoConsensusError{Policy: policy.Kind(), Rounds: v.cfg.MaxRounds, Cause: lastErr}
}

// round executes one leader and up to cfg.Validators validators.
func (v *Validator) round(ctx context.Context, round int, op Operation, policy Policy) (outcome Outcome, err error) {
	ctx, span := v.tracer.Start(ctx, "consensus.round", trace.WithAttributes(
		attribute.String("consensus.policy", string(policy.Kind())),
		attribute.Int("consensus.round", round),
		attribute.Int("consensus.validators", v.cfg.Validators),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	raw, err := op.Execute(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("leader execution: %w", err)
	}
	candidate, err := policy.Propose(ctx, raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("leader proposal: %w", err)
	}

	n := v.cfg.Validators
	quorum := policy.Quorum(n)
	accepts, rejects := 0, 0

tally:
	for i := 0; i < n; i++ {
		switch Decide(accepts, rejects, n, quorum) {
		case DecisionAccepted, DecisionRejected:
			break tally
		}

		accepted, voteErr := v.vote(ctx, op, policy, candidate)
		if voteErr != nil {
			v.logger.DebugContext(ctx, "validator abstained", "round", round, "validator", i, "error", voteErr)
		}
		if accepted {
			accepts++
		} else {
			rejects++
		}
	}

	span.SetAttributes(attribute.Int("consensus.accepts", accepts), attribute.Int("consensus.rejects", rejects))
	if Decide(accepts, rejects, n, quorum) != DecisionAccepted {
		return Outcome{}, RoundRejectedError(accepts, rejects, quorum)
	}

	return Outcome{
		Canonical:  candidate,
		Policy:     policy.Kind(),
		Round:      round,
		Accepts:    accepts,
		Rejects:    rejects,
		Validators: n,
	}, nil
}

// vote performs one validator's independent execution and vote. Any failure
// counts as a rejection.
func (v *Validator) vote(ctx context.Context, op Operation, policy Policy, candidate string) (bool, error) {
	raw, err := op.Execute(ctx)
	if err != nil {
		return false, fmt.Errorf("validator execution: %w", err)
	}
	ok, err := policy.Vote(ctx, raw, candidate)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// IsNoConsensus reports whether err is a consensus rejection.
func IsNoConsensus(err error) bool { return errors.Is(err, ErrNoConsensus) }
