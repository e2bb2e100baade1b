package llm

import (
	"context"

	"dbchat/internal/apperr"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// buildChatCompletionRequest maps the conversation 1:1 onto chat-completion
// messages: system instructions first, then the alternating history, the new
// query as user, and accumulated errors appended as system messages.
func buildChatCompletionRequest(conv Conversation, model string) chatCompletionRequest {
	messages := make([]chatMessage, 0, 2*len(conv.History)+len(conv.Errors)+2)
	messages = append(messages, chatMessage{Role: "system", Content: conv.System})
	for _, exchange := range conv.History {
		messages = append(messages, chatMessage{Role: "user", Content: exchange.Prompt})
		messages = append(messages, chatMessage{Role: "assistant", Content: exchange.Response})
	}
	messages = append(messages, chatMessage{Role: "user", Content: conv.Query})
	for _, feedback := range conv.Errors {
		messages = append(messages, chatMessage{Role: "system", Content: feedback})
	}
	return chatCompletionRequest{Model: model, Messages: messages}
}

type openAIProvider struct {
	cfg Config
}

func (slf *openAIProvider) QueryModel(ctx context.Context, conv Conversation, model string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + slf.cfg.OpenAIKey}

	var resp chatCompletionResponse
	if err := postJSON(ctx, slf.cfg, slf.cfg.OpenAIURL, headers, buildChatCompletionRequest(conv, model), &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &apperr.MalformedResponseError{Message: "model response contains no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
