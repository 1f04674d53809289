// Package domain provides the core types shared by the analysis and rubric
// pipelines: categories, caller identities, analysis records, pagination
// windows and rubric evaluation requests and results.
package domain

import "unicode/utf8"

// Rubric bounds for EvaluationResult.
const (
	MinEvaluationScore   = 0
	MaxEvaluationScore   = 100
	MaxEvaluationMessage = 200
)

// EvaluationRequest carries the inputs of a text rubric evaluation.
type EvaluationRequest struct {
	// Description is the free-text account of the experience being judged.
	Description string `json:"description"`

	// Tags are optional reference categories such as "food" or "sports".
	Tags []string `json:"tags,omitempty"`

	// ImageQuality is an optional 0..100 value representing a 0.0..1.0
	// quality fraction of an accompanying image.
	ImageQuality *int `json:"image_quality,omitempty" validate:"omitempty,min=0,max=100"`
}

// Validate checks the request against its struct tags.
func (r EvaluationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(ErrInvalidRequest, err)
	}
	return nil
}

// EvaluationResult is the transient outcome of a rubric evaluation. It is
// never persisted. Both bounds must hold; out-of-range values are rejected,
// never clamped or truncated.
type EvaluationResult struct {
	Score   int    `json:"score"   validate:"min=0,max=100"`
	Message string `json:"message" validate:"max=200"`
}

// MessageLength returns the message length in characters.
func (r EvaluationResult) MessageLength() int { return utf8.RuneCountInString(r.Message) }

// AnalyzeRequest carries the inputs of an image analysis write. Every URL is
// accepted; one that cannot be fetched is analyzed as a fetch failure.
type AnalyzeRequest struct {
	Caller  Address `json:"caller"`
	URL     string  `json:"url"`
	Defense string  `json:"defense"`
}

// Validate checks the request against its struct tags.
func (r AnalyzeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(ErrInvalidRequest, err)
	}
	return nil
}
