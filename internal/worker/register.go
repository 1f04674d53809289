// Package worker registers the consensus workflows and their activities
// with a Temporal worker.
package worker

import (
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-gaucho/internal/workflow"
)

// ActivityRegistrar is satisfied by sdk workers and both Temporal test
// environments.
type ActivityRegistrar interface {
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

// Registrar is satisfied by sdk workers and the workflow test environment.
type Registrar interface {
	ActivityRegistrar
	RegisterWorkflow(w any)
}

// RegisterAll registers both workflows and every activity under the names
// the workflows schedule. Call it once during worker startup.
func RegisterAll(r Registrar, acts *Activities) {
	r.RegisterWorkflow(workflow.AnalyzeImageWorkflow)
	r.RegisterWorkflow(workflow.EvaluateWorkflow)
	RegisterActivities(r, acts)
}

// RegisterActivities registers every activity under the name the workflows
// schedule it by.
func RegisterActivities(r ActivityRegistrar, acts *Activities) {
	register := func(fn any, name string) {
		r.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
	}
	register(acts.ExecuteStep, workflow.ActivityExecuteStep)
	register(acts.Propose, workflow.ActivityPropose)
	register(acts.Validate, workflow.ActivityValidate)
	register(acts.AppendRecord, workflow.ActivityAppendRecord)
	register(acts.ReportConsensusFailure, workflow.ActivityReportConsensusFailure)
	register(acts.ReportEvaluation, workflow.ActivityReportEvaluation)
}
