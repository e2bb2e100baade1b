package llm

import (
	"context"

	"dbchat/internal/apperr"
)

// customProvider talks to a self-hosted endpoint that mirrors the
// chat-completion wire shape, so the request builder is shared.
type customProvider struct {
	cfg Config
}

func (slf *customProvider) QueryModel(ctx context.Context, conv Conversation, model string) (string, error) {
	headers := map[string]string{}
	if slf.cfg.CustomKey != "" {
		headers["Authorization"] = "Bearer " + slf.cfg.CustomKey
	}

	var resp chatCompletionResponse
	if err := postJSON(ctx, slf.cfg, slf.cfg.CustomURL, headers, buildChatCompletionRequest(conv, model), &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &apperr.MalformedResponseError{Message: "model response contains no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
