// Package workflow is the distributed consensus host for go-gaucho.
//
// AnalyzeImageWorkflow and EvaluateWorkflow run the same rounds as the
// in-process consensus.Validator, but every independent execution of the
// divergent step is its own Temporal activity and may land on any worker.
// Validator activities of a round run in parallel; the tally is decided with
// consensus.Decide so both hosts accept exactly the same outcomes.
//
// Workflow code stays deterministic: rendering, judge calls, storage and
// event emission all happen in activities registered by internal/worker.
package workflow
