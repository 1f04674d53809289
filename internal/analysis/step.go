package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/render"
)

// StepExecutor is the divergent image analysis step: render the URL, then
// ask the judge to classify and describe it.
type StepExecutor struct {
	renderer render.Renderer
	judge    judge.Judge
	logger   *slog.Logger
}

// NewStepExecutor creates a step executor.
func NewStepExecutor(r render.Renderer, j judge.Judge, logger *slog.Logger) *StepExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StepExecutor{renderer: r, judge: j, logger: logger.With("component", "analysis_step")}
}

// Execute runs one independent analysis of url. It is total: every failure
// becomes the FallbackPayload instead of an error.
func (e *StepExecutor) Execute(ctx context.Context, url string) string {
	if strings.TrimSpace(url) == "" {
		return FallbackPayload(errors.New("empty image URL"))
	}
	shot, err := e.renderer.Render(ctx, url, render.ModeScreenshot)
	if err == nil && len(shot.Data) == 0 {
		err = errors.New("renderer returned no data")
	}
	if err != nil {
		e.logger.WarnContext(ctx, "render failed, using fallback", "url", url, "error", err)
		return FallbackPayload(err)
	}

	out, err := e.judge.Invoke(ctx, judge.Prompt{
		Operation:   judge.OpAnalysis,
		Text:        AnalysisPrompt,
		Attachments: []judge.Attachment{{MIMEType: shot.MIMEType, Data: shot.Data}},
		Format:      judge.FormatText,
	})
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("judge returned an empty analysis")
	}
	if err != nil {
		e.logger.WarnContext(ctx, "analysis failed, using fallback", "url", url, "error", err)
		return FallbackPayload(err)
	}
	return strings.TrimSpace(out)
}

// Operation adapts Execute for url to a consensus.Operation. The defense
// never reaches the analysis prompt; only ScoringPolicy sees it.
func (e *StepExecutor) Operation(url, _ string) consensus.Operation {
	return consensus.OperationFunc(func(ctx context.Context) (string, error) {
		return e.Execute(ctx, url), nil
	})
}

// ScoringPolicy returns the non-comparative policy that turns an analysis
// into the scored verdict.
func ScoringPolicy(j judge.Judge, defense string) *consensus.NonComparativePolicy {
	return consensus.NewNonComparativePolicy(j, ScoringTask(defense), ScoringCriteria)
}
