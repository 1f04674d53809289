package render

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Chromedp renders pages in a headless Chrome driven over CDP. Each call
// starts its own browser so renders share no cookies or cache.
type Chromedp struct {
	cfg Config
}

// NewChromedp creates a chromedp renderer.
func NewChromedp(cfg Config) *Chromedp { return &Chromedp{cfg: cfg} }

// Render implements Renderer.
func (c *Chromedp) Render(ctx context.Context, url string, mode Mode) (Payload, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if c.cfg.ViewportWidth > 0 && c.cfg.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(c.cfg.ViewportWidth, c.cfg.ViewportHeight))
	}
	if c.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	switch mode {
	case ModeScreenshot:
		var buf []byte
		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.FullScreenshot(&buf, 100),
		); err != nil {
			return Payload{}, fmt.Errorf("chromedp screenshot %s: %w", url, err)
		}
		return Payload{MIMEType: "image/png", Data: buf}, nil
	case ModeText:
		var text string
		if err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Text("body", &text, chromedp.ByQuery),
		); err != nil {
			return Payload{}, fmt.Errorf("chromedp text %s: %w", url, err)
		}
		return Payload{MIMEType: "text/plain; charset=utf-8", Data: []byte(text)}, nil
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}
