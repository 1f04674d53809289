package render

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// HTTP fetches the resource directly. Screenshot mode accepts only image
// responses, which covers direct image links without a browser. Text mode
// returns the body as is.
type HTTP struct {
	cfg    Config
	client *http.Client
}

// NewHTTP creates a direct fetcher. A nil client uses http.DefaultClient.
func NewHTTP(cfg Config, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{cfg: cfg, client: client}
}

// Render implements Renderer.
func (h *HTTP) Render(ctx context.Context, url string, mode Mode) (Payload, error) {
	if mode != ModeScreenshot && mode != ModeText {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	ctx, cancel := withTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build request: %w", err)
	}
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payload{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mode == ModeScreenshot && !strings.HasPrefix(mediaType, "image/") {
		return Payload{}, fmt.Errorf("%w: %s is %q", ErrNotImage, url, mediaType)
	}

	body, err := h.read(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("read %s: %w", url, err)
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(body)
	}
	return Payload{MIMEType: mediaType, Data: body}, nil
}

func (h *HTTP) read(r io.Reader) ([]byte, error) {
	if h.cfg.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, h.cfg.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > h.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.cfg.MaxBytes)
	}
	return body, nil
}
