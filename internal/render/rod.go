package render

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Rod renders pages with go-rod. It connects to DebuggerURL when set and
// otherwise launches a headless browser per call.
type Rod struct {
	cfg Config
}

// NewRod creates a rod renderer.
func NewRod(cfg Config) *Rod { return &Rod{cfg: cfg} }

// Render implements Renderer.
func (r *Rod) Render(ctx context.Context, url string, mode Mode) (Payload, error) {
	if mode != ModeScreenshot && mode != ModeText {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	ctx, cancel := withTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	controlURL := r.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return Payload{}, fmt.Errorf("launch browser: %w", err)
		}
		defer l.Kill()
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return Payload{}, fmt.Errorf("connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return Payload{}, fmt.Errorf("open %s: %w", url, err)
	}
	defer func() { _ = page.Close() }()

	if r.cfg.ViewportWidth > 0 && r.cfg.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             r.cfg.ViewportWidth,
			Height:            r.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			return Payload{}, fmt.Errorf("set viewport: %w", err)
		}
	}
	if err := page.WaitLoad(); err != nil {
		return Payload{}, fmt.Errorf("load %s: %w", url, err)
	}

	if mode == ModeText {
		body, err := page.Element("body")
		if err != nil {
			return Payload{}, fmt.Errorf("find body of %s: %w", url, err)
		}
		text, err := body.Text()
		if err != nil {
			return Payload{}, fmt.Errorf("read text of %s: %w", url, err)
		}
		return Payload{MIMEType: "text/plain; charset=utf-8", Data: []byte(text)}, nil
	}

	shot, err := page.Screenshot(true, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("rod screenshot %s: %w", url, err)
	}
	return Payload{MIMEType: "image/png", Data: shot}, nil
}
