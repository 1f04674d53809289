package judge

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ProviderGenAI names the Gemini provider in configuration.
const ProviderGenAI = "genai"

// GenAI invokes Gemini models through the Google GenAI SDK. Screenshots are
// sent as inline image parts next to the instruction text.
type GenAI struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// NewGenAI creates a Gemini judge.
func NewGenAI(ctx context.Context, apiKey, model string, temperature *float32) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, ProviderGenAI)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAI{client: client, model: model, temperature: temperature}, nil
}

// Invoke implements Judge.
func (g *GenAI) Invoke(ctx context.Context, prompt Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt.Text)}
	for _, att := range prompt.Attachments {
		parts = append(parts, genai.NewPartFromBytes(att.Data, att.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{Temperature: g.temperature}
	if prompt.Format == FormatJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", classifyError(ProviderGenAI, fmt.Errorf("GenAI generate failed: %w", err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{Provider: ProviderGenAI, Message: ErrEmptyResponse.Error(), Type: ErrorTypeContent}
	}
	return text, nil
}

// Name returns the provider/model label.
func (g *GenAI) Name() string { return fmt.Sprintf("%s:%s", ProviderGenAI, g.model) }
