// Package judgetest provides a scripted Judge for tests of packages that
// depend on the judge client.
package judgetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahrav/go-gaucho/internal/judge"
)

// Handler answers one prompt.
type Handler func(ctx context.Context, prompt judge.Prompt) (string, error)

// Scripted is a Judge whose answers are configured per operation. It records
// every prompt it receives. Safe for concurrent use.
type Scripted struct {
	mu       sync.Mutex
	handlers map[judge.Operation]Handler
	prompts  []judge.Prompt
}

// New returns a Scripted judge with no handlers; unscripted operations fail.
func New() *Scripted {
	return &Scripted{handlers: make(map[judge.Operation]Handler)}
}

// On installs fn as the handler for op.
func (s *Scripted) On(op judge.Operation, fn Handler) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = fn
	return s
}

// Reply answers op with responses in order; the last response repeats.
func (s *Scripted) Reply(op judge.Operation, responses ...string) *Scripted {
	var (
		mu   sync.Mutex
		next int
	)
	return s.On(op, func(context.Context, judge.Prompt) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return "", nil
		}
		out := responses[min(next, len(responses)-1)]
		next++
		return out, nil
	})
}

// Fail makes every call for op return err.
func (s *Scripted) Fail(op judge.Operation, err error) *Scripted {
	return s.On(op, func(context.Context, judge.Prompt) (string, error) { return "", err })
}

// Invoke implements judge.Judge.
func (s *Scripted) Invoke(ctx context.Context, prompt judge.Prompt) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	fn, ok := s.handlers[prompt.Operation]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("judgetest: no handler for operation %q", prompt.Operation)
	}
	return fn(ctx, prompt)
}

// Prompts returns the prompts received for op, in call order.
func (s *Scripted) Prompts(op judge.Operation) []judge.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []judge.Prompt
	for _, p := range s.prompts {
		if p.Operation == op {
			out = append(out, p)
		}
	}
	return out
}

// Calls returns the number of prompts received for op.
func (s *Scripted) Calls(op judge.Operation) int { return len(s.Prompts(op)) }
