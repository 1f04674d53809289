// Package render fetches external resources for the judge. A Renderer turns
// a URL into an opaque visual or textual payload; callers treat any error as
// "resource unavailable" and never inspect its type.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Mode selects what a Renderer produces.
type Mode string

const (
	// ModeScreenshot produces an image of the resource.
	ModeScreenshot Mode = "screenshot"

	// ModeText produces the visible text of the resource.
	ModeText Mode = "text"
)

// Payload is rendered content with its media type.
type Payload struct {
	MIMEType string
	Data     []byte
}

// Renderer fetches and renders a URL.
type Renderer interface {
	Render(ctx context.Context, url string, mode Mode) (Payload, error)
}

// Func adapts an ordinary function to the Renderer interface.
type Func func(ctx context.Context, url string, mode Mode) (Payload, error)

// Render implements Renderer.
func (f Func) Render(ctx context.Context, url string, mode Mode) (Payload, error) {
	return f(ctx, url, mode)
}

// Sentinel errors for rendering.
var (
	// ErrUnsupportedMode indicates a renderer cannot produce the requested mode.
	ErrUnsupportedMode = errors.New("unsupported render mode")

	// ErrNotImage indicates a screenshot fetch returned non-image content.
	ErrNotImage = errors.New("resource is not an image")

	// ErrTooLarge indicates the resource exceeded the configured size limit.
	ErrTooLarge = errors.New("resource exceeds size limit")

	// ErrUnknownDriver indicates an unsupported renderer driver in configuration.
	ErrUnknownDriver = errors.New("unknown render driver")

	// ErrNoRenderers indicates a Chain was built without any renderer.
	ErrNoRenderers = errors.New("no renderers configured")
)

// Renderer drivers accepted in configuration.
const (
	DriverAuto     = "auto"
	DriverHTTP     = "http"
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

// Config selects and tunes the renderer.
type Config struct {
	Driver         string        `yaml:"driver"          validate:"required,oneof=auto http chromedp rod"`
	Timeout        time.Duration `yaml:"timeout"         validate:"gte=0"`
	ViewportWidth  int           `yaml:"viewport_width"  validate:"gte=0"`
	ViewportHeight int           `yaml:"viewport_height" validate:"gte=0"`
	MaxBytes       int64         `yaml:"max_bytes"       validate:"gte=0"`
	UserAgent      string        `yaml:"user_agent"`

	// DebuggerURL connects the rod driver to a running browser instead of
	// launching one.
	DebuggerURL string `yaml:"debugger_url"`
}

// DefaultConfig fetches images directly and falls back to headless Chrome.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverAuto,
		Timeout:        30 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		MaxBytes:       10 << 20,
		UserAgent:      "gaucho-render/1.0",
	}
}

// New builds the configured renderer.
func New(cfg Config, logger *slog.Logger) (Renderer, error) {
	switch cfg.Driver {
	case DriverHTTP:
		return NewHTTP(cfg, nil), nil
	case DriverChromedp:
		return NewChromedp(cfg), nil
	case DriverRod:
		return NewRod(cfg), nil
	case DriverAuto, "":
		return NewChain(logger, NewHTTP(cfg, nil), NewChromedp(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
