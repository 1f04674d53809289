// Package app wires configuration into running components: the judge, the
// renderer, the record store, the event sink and the two entry-point
// services. Surfaces (CLI, MCP, Temporal worker) build on an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ahrav/go-gaucho/internal/analysis"
	"github.com/ahrav/go-gaucho/internal/config"
	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/render"
	"github.com/ahrav/go-gaucho/internal/rubric"
	"github.com/ahrav/go-gaucho/internal/store"
	"github.com/ahrav/go-gaucho/internal/worker"
	pkgactivity "github.com/ahrav/go-gaucho/pkg/activity"
	"github.com/ahrav/go-gaucho/pkg/events"
)

// App holds the wired components.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Judge    judge.Judge
	Renderer render.Renderer
	Store    store.CategoryStore
	Sink     events.EventSink
	Analysis *analysis.Service
	Rubric   *rubric.Engine

	closers []func() error
}

// Option overrides a component New would otherwise build from config.
type Option func(*App)

// WithJudge uses j instead of the configured provider.
func WithJudge(j judge.Judge) Option { return func(a *App) { a.Judge = j } }

// WithRenderer uses r instead of the configured renderer.
func WithRenderer(r render.Renderer) Option { return func(a *App) { a.Renderer = r } }

// WithStore uses s instead of the configured store.
func WithStore(s store.CategoryStore) Option { return func(a *App) { a.Store = s } }

// WithSink uses s instead of the logging event sink.
func WithSink(s events.EventSink) Option { return func(a *App) { a.Sink = s } }

// New builds an App from cfg. Close releases whatever it opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}
	for _, opt := range opts {
		opt(a)
	}

	if a.Judge == nil {
		j, err := judge.New(ctx, cfg.Judge, logger)
		if err != nil {
			return nil, fmt.Errorf("judge: %w", err)
		}
		a.Judge = j
	}
	if a.Renderer == nil {
		r, err := render.New(cfg.Render, logger)
		if err != nil {
			return nil, fmt.Errorf("renderer: %w", err)
		}
		a.Renderer = r
	}
	if a.Store == nil {
		s, closeStore, err := store.Open(ctx, cfg.Store, logger)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		a.Store = s
		a.closers = append(a.closers, closeStore)
	}
	if a.Sink == nil {
		a.Sink = events.NewLogEventSink(logger)
	}

	host := consensus.NewValidator(cfg.Consensus, logger)
	a.Analysis = analysis.NewService(a.Renderer, a.Judge, host, a.Store, a.Sink, logger)
	a.Rubric = rubric.NewEngine(a.Judge, host, a.Sink, logger)
	return a, nil
}

// Activities returns the Temporal activity set backed by this App.
func (a *App) Activities() *worker.Activities {
	return worker.NewActivities(
		pkgactivity.NewBaseActivities(a.Sink),
		analysis.NewStepExecutor(a.Renderer, a.Judge, a.Logger),
		a.Judge,
		a.Analysis,
	)
}

// Close releases every resource opened by New.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
