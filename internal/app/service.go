package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/workflow"
)

// Service is the set of entry points exposed by every surface.
type Service interface {
	AnalyzeImage(ctx context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error)
	GetAnalysisByCategory(ctx context.Context, category string, start, count int) (domain.Page, error)
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error)
}

// Local returns the entry points on the in-process consensus host.
func (a *App) Local() Service { return local{a} }

type local struct{ a *App }

func (l local) AnalyzeImage(ctx context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error) {
	return l.a.Analysis.AnalyzeImage(ctx, req)
}

func (l local) GetAnalysisByCategory(ctx context.Context, category string, start, count int) (domain.Page, error) {
	return l.a.Analysis.GetAnalysisByCategory(ctx, category, start, count)
}

func (l local) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	return l.a.Rubric.Evaluate(ctx, req)
}

// Distributed returns the entry points on the Temporal host. Writes and
// evaluations run as workflows on c; reads go straight to the store.
func (a *App) Distributed(c client.Client) Service {
	return &distributed{
		client:    c,
		taskQueue: a.Config.Temporal.TaskQueue,
		consensus: a.Config.Consensus,
		reader:    a.Local(),
	}
}

type distributed struct {
	client    client.Client
	taskQueue string
	consensus consensus.Config
	reader    Service
}

func (d *distributed) options(prefix string) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:        prefix + "-" + uuid.NewString(),
		TaskQueue: d.taskQueue,
	}
}

func (d *distributed) AnalyzeImage(ctx context.Context, req domain.AnalyzeRequest) (domain.RecordRef, error) {
	run, err := d.client.ExecuteWorkflow(ctx, d.options("analyze"), workflow.AnalyzeImageWorkflow,
		workflow.AnalyzeImageInput{Request: req, Consensus: d.consensus})
	if err != nil {
		return domain.RecordRef{}, fmt.Errorf("start analyze workflow: %w", err)
	}
	var ref domain.RecordRef
	if err := run.Get(ctx, &ref); err != nil {
		return domain.RecordRef{}, fmt.Errorf("analyze workflow %s: %w", run.GetID(), err)
	}
	return ref, nil
}

func (d *distributed) GetAnalysisByCategory(ctx context.Context, category string, start, count int) (domain.Page, error) {
	return d.reader.GetAnalysisByCategory(ctx, category, start, count)
}

func (d *distributed) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResult, error) {
	run, err := d.client.ExecuteWorkflow(ctx, d.options("evaluate"), workflow.EvaluateWorkflow,
		workflow.EvaluateInput{Request: req, Consensus: d.consensus})
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("start evaluate workflow: %w", err)
	}
	var res domain.EvaluationResult
	if err := run.Get(ctx, &res); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("evaluate workflow %s: %w", run.GetID(), err)
	}
	return res, nil
}
