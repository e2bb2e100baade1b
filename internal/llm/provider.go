package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dbchat/internal/apperr"
)

// Config carries the endpoint, credential and limit settings of all
// providers. It is filled from the application configuration at startup.
type Config struct {
	OpenAIURL        string
	OpenAIKey        string
	AnthropicURL     string
	AnthropicKey     string
	AnthropicVersion string
	GeminiURL        string
	GeminiKey        string
	CustomURL        string
	CustomKey        string
	MaxTokens        int
	Timeout          time.Duration
}

// Provider sends a conversation to one LLM backend and returns the raw text
// of the model's answer. Failures to reach or be accepted by the backend are
// ProviderCallError; a reply that carries no usable content is
// MalformedResponseError.
type Provider interface {
	QueryModel(ctx context.Context, conv Conversation, model string) (string, error)
}

// ForModel picks the provider from the model identifier prefix. Unknown
// prefixes go to the self-hosted endpoint so locally served models need no
// registration.
func ForModel(model string, cfg Config) Provider {
	switch {
	case strings.HasPrefix(model, "gpt"):
		return &openAIProvider{cfg: cfg}
	case strings.HasPrefix(model, "claude"):
		return &anthropicProvider{cfg: cfg}
	case strings.HasPrefix(model, "gemini"):
		return &geminiProvider{cfg: cfg}
	default:
		return &customProvider{cfg: cfg}
	}
}

// ForCustomURL targets a registered self-hosted endpoint instead of the
// configured default one. Auth and limits still come from cfg.
func ForCustomURL(url string, cfg Config) Provider {
	cfg.CustomURL = url
	return &customProvider{cfg: cfg}
}

// postJSON marshals body, posts it with the given headers and decodes the
// reply into out. The per-call timeout comes from cfg.
func postJSON(ctx context.Context, cfg Config, url string, headers map[string]string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &apperr.ProviderCallError{Message: fmt.Sprintf("cannot encode model request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return &apperr.ProviderCallError{Message: fmt.Sprintf("cannot build model request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return &apperr.ProviderCallError{Message: fmt.Sprintf("model call failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.ProviderCallError{Message: fmt.Sprintf("cannot read model response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &apperr.ProviderCallError{
			Message: fmt.Sprintf("model call returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &apperr.MalformedResponseError{Message: fmt.Sprintf("cannot decode model response: %v", err)}
	}
	return nil
}
