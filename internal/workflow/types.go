package workflow

import (
	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/domain"
)

// Activity names registered by the worker.
const (
	ActivityExecuteStep            = "ExecuteStep"
	ActivityPropose                = "Propose"
	ActivityValidate               = "Validate"
	ActivityAppendRecord           = "AppendRecord"
	ActivityReportConsensusFailure = "ReportConsensusFailure"
	ActivityReportEvaluation       = "ReportEvaluation"
)

// Application error types returned by workflows and activities.
const (
	ErrTypeValidation      = "Validation"
	ErrTypeNoConsensus     = "NoConsensus"
	ErrTypeInvalidResponse = "InvalidResponse"
	ErrTypeJudge           = "Judge"
	ErrTypeStore           = "Store"
)

// StepKind selects the divergent step an activity executes.
type StepKind string

const (
	// StepAnalysis renders a URL and analyzes the image.
	StepAnalysis StepKind = "analysis"

	// StepRubric asks the judge for a rubric evaluation in JSON.
	StepRubric StepKind = "rubric"
)

// StepInput describes one independent execution.
type StepInput struct {
	Kind StepKind `json:"kind"`
	URL  string   `json:"url,omitempty"`
	Task string   `json:"task,omitempty"`
}

// PolicyInput is the serializable form of a consensus.Policy.
type PolicyInput struct {
	Kind     consensus.Kind `json:"kind"`
	Task     string         `json:"task,omitempty"`
	Criteria string         `json:"criteria,omitempty"`
}

// ProposeInput is the leader's proposal request.
type ProposeInput struct {
	Policy PolicyInput `json:"policy"`
	Raw    string      `json:"raw"`
}

// ValidateInput asks one validator to execute the step itself and vote on
// the candidate.
type ValidateInput struct {
	Step      StepInput   `json:"step"`
	Policy    PolicyInput `json:"policy"`
	Candidate string      `json:"candidate"`
}

// EvaluationReport carries a validated rubric result to the event sink.
type EvaluationReport struct {
	Key     string                        `json:"key"`
	Payload domain.RubricEvaluatedPayload `json:"payload"`
}

// AnalyzeImageInput starts AnalyzeImageWorkflow. A zero Consensus uses
// consensus.DefaultConfig.
type AnalyzeImageInput struct {
	Request   domain.AnalyzeRequest `json:"request"`
	Consensus consensus.Config      `json:"consensus"`
}

// EvaluateInput starts EvaluateWorkflow. A zero Consensus uses
// consensus.DefaultConfig.
type EvaluateInput struct {
	Request   domain.EvaluationRequest `json:"request"`
	Consensus consensus.Config         `json:"consensus"`
}
