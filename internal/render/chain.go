package render

import (
	"context"
	"errors"
	"log/slog"
)

// Chain tries renderers in order and returns the first success.
type Chain struct {
	renderers []Renderer
	logger    *slog.Logger
}

// NewChain builds a fallback chain.
func NewChain(logger *slog.Logger, renderers ...Renderer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{renderers: renderers, logger: logger.With("component", "render")}
}

// Render implements Renderer. The returned error joins every attempt's error.
func (c *Chain) Render(ctx context.Context, url string, mode Mode) (Payload, error) {
	if len(c.renderers) == 0 {
		return Payload{}, ErrNoRenderers
	}
	var errs []error
	for i, r := range c.renderers {
		p, err := r.Render(ctx, url, mode)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		c.logger.DebugContext(ctx, "renderer failed, trying next", "url", url, "mode", mode, "position", i, "error", err)
	}
	return Payload{}, errors.Join(errs...)
}
