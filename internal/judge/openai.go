package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ProviderOpenAI names the OpenAI-compatible provider in configuration.
const ProviderOpenAI = "openai"

// defaultOpenAIEndpoint is used when no endpoint is configured.
const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAI invokes any endpoint speaking the chat/completions protocol.
// Attachments are inlined as base64 data URLs in image_url content parts.
type OpenAI struct {
	endpoint    string
	apiKey      string
	model       string
	temperature *float32
	headers     map[string]string
	httpClient  *http.Client
}

// NewOpenAI creates an OpenAI-compatible judge. A nil httpClient uses
// http.DefaultClient; deadlines come from the call context.
func NewOpenAI(endpoint, apiKey, model string, temperature *float32, headers map[string]string, httpClient *http.Client) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, ProviderOpenAI)
	}
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		headers:     headers,
		httpClient:  httpClient,
	}, nil
}

// Invoke implements Judge.
func (o *OpenAI) Invoke(ctx context.Context, prompt Prompt) (string, error) {
	httpReq, err := o.build(ctx, prompt)
	if err != nil {
		return "", err
	}

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", &ProviderError{Provider: ProviderOpenAI, Message: err.Error(), Type: ErrorTypeTimeout}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &ProviderError{Provider: ProviderOpenAI, Message: err.Error(), Type: ErrorTypeNetwork}
	}
	defer func() { _ = httpResp.Body.Close() }()

	return o.parse(httpResp)
}

// build constructs the chat/completions request.
func (o *OpenAI) build(ctx context.Context, prompt Prompt) (*http.Request, error) {
	content := []map[string]any{{"type": "text", "text": prompt.Text}}
	for _, att := range prompt.Attachments {
		dataURL := "data:" + att.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(att.Data)
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL},
		})
	}

	body := map[string]any{
		"model": o.model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}
	if o.temperature != nil {
		body["temperature"] = *o.temperature
	}
	if prompt.Format == FormatJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	for k, v := range o.headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// parse extracts the first choice's content or a classified ProviderError.
func (o *OpenAI) parse(httpResp *http.Response) (string, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Message: fmt.Sprintf("failed to read response: %v", err), Type: ErrorTypeNetwork}
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", parseOpenAIError(httpResp, body)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, StatusCode: httpResp.StatusCode, Message: fmt.Sprintf("failed to parse response: %v", err), Type: ErrorTypeProvider}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		typ := ErrorTypeProvider
		if len(resp.Choices) > 0 && resp.Choices[0].FinishReason == "content_filter" {
			typ = ErrorTypeContent
		}
		return "", &ProviderError{Provider: ProviderOpenAI, StatusCode: httpResp.StatusCode, Message: ErrEmptyResponse.Error(), Type: typ}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseOpenAIError converts an error response into a ProviderError.
func parseOpenAIError(httpResp *http.Response, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	retryAfter, _ := strconv.Atoi(httpResp.Header.Get("Retry-After"))
	return &ProviderError{
		Provider:   ProviderOpenAI,
		StatusCode: httpResp.StatusCode,
		Message:    msg,
		Type:       typeForStatus(httpResp.StatusCode),
		RetryAfter: retryAfter,
	}
}

// Name returns the provider/model label.
func (o *OpenAI) Name() string { return fmt.Sprintf("%s:%s", ProviderOpenAI, o.model) }
