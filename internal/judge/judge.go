// Package judge provides the client for the external language-model judge.
//
// A Judge turns a Prompt (instruction text, optional image attachments and a
// desired response format) into the model's raw textual answer. Provider
// adapters talk to Gemini or to any OpenAI-compatible endpoint; a middleware
// chain adds logging, tracing, rate limiting, retries and circuit breaking
// around them. The judge is intentionally non-deterministic: callers that need
// agreement wrap it in the consensus package.
package judge

import "context"

// Format selects the response format requested from the model.
type Format string

const (
	// FormatText requests free-form text.
	FormatText Format = "text"

	// FormatJSON requests a single JSON document.
	FormatJSON Format = "json"
)

// Operation labels a judge call for logging and metrics.
type Operation string

// Operations issued by the pipelines.
const (
	OpAnalysis    Operation = "analysis"
	OpScoring     Operation = "scoring"
	OpEquivalence Operation = "equivalence"
	OpRubric      Operation = "rubric"
)

// Attachment is binary content sent alongside the prompt, typically a screenshot.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Prompt is one judge invocation.
type Prompt struct {
	Operation   Operation
	Text        string
	Attachments []Attachment
	Format      Format
}

// Judge invokes the external model. Implementations must be safe for
// concurrent use.
type Judge interface {
	Invoke(ctx context.Context, prompt Prompt) (string, error)
}

// Func adapts an ordinary function to the Judge interface.
type Func func(ctx context.Context, prompt Prompt) (string, error)

// Invoke implements Judge.
func (f Func) Invoke(ctx context.Context, prompt Prompt) (string, error) { return f(ctx, prompt) }

// Middleware decorates a Judge with cross-cutting behavior.
type Middleware func(next Judge) Judge

// Chain wraps j with the given middleware. The first middleware is the
// outermost, so Chain(j, a, b) calls a, then b, then j.
func Chain(j Judge, middleware ...Middleware) Judge {
	for i := len(middleware) - 1; i >= 0; i-- {
		j = middleware[i](j)
	}
	return j
}
