package llm

import (
	"context"

	"dbchat/internal/apperr"
)

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// buildAnthropicRequest carries the system instructions in the dedicated
// top-level field; the message list starts with the first user turn and
// accumulated errors are appended with the user role.
func buildAnthropicRequest(conv Conversation, model string, maxTokens int) anthropicRequest {
	messages := make([]chatMessage, 0, 2*len(conv.History)+len(conv.Errors)+1)
	for _, exchange := range conv.History {
		messages = append(messages, chatMessage{Role: "user", Content: exchange.Prompt})
		messages = append(messages, chatMessage{Role: "assistant", Content: exchange.Response})
	}
	messages = append(messages, chatMessage{Role: "user", Content: conv.Query})
	for _, feedback := range conv.Errors {
		messages = append(messages, chatMessage{Role: "user", Content: feedback})
	}
	return anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    conv.System,
		Messages:  messages,
	}
}

type anthropicProvider struct {
	cfg Config
}

func (slf *anthropicProvider) QueryModel(ctx context.Context, conv Conversation, model string) (string, error) {
	headers := map[string]string{
		"x-api-key":         slf.cfg.AnthropicKey,
		"anthropic-version": slf.cfg.AnthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, slf.cfg, slf.cfg.AnthropicURL, headers, buildAnthropicRequest(conv, model, slf.cfg.MaxTokens), &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", &apperr.MalformedResponseError{Message: "model response contains no content"}
	}
	return resp.Content[0].Text, nil
}
