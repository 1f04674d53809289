// Package analysis implements the image analysis pipeline. A StepExecutor
// renders the submitted URL and asks the judge for a factual description,
// the consensus validator turns independent executions into one scored
// verdict, and the Service routes that verdict into its category log.
//
// Reads never fail on bad parameters: unknown categories resolve to the
// catch-all log and windows are clamped.
package analysis
