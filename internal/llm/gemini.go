package llm

import (
	"context"
	"fmt"

	"dbchat/internal/apperr"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func geminiText(role, text string) geminiContent {
	return geminiContent{Role: role, Parts: []geminiPart{{Text: text}}}
}

// buildGeminiRequest has no system role, so the system instructions become
// the first user content. Past model replies use the "model" role and
// accumulated errors are appended as user content.
func buildGeminiRequest(conv Conversation) geminiRequest {
	contents := make([]geminiContent, 0, 2*len(conv.History)+len(conv.Errors)+2)
	contents = append(contents, geminiText("user", conv.System))
	for _, exchange := range conv.History {
		contents = append(contents, geminiText("user", exchange.Prompt))
		contents = append(contents, geminiText("model", exchange.Response))
	}
	contents = append(contents, geminiText("user", conv.Query))
	for _, feedback := range conv.Errors {
		contents = append(contents, geminiText("user", feedback))
	}
	return geminiRequest{Contents: contents}
}

type geminiProvider struct {
	cfg Config
}

func (slf *geminiProvider) QueryModel(ctx context.Context, conv Conversation, model string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", slf.cfg.GeminiURL, model, slf.cfg.GeminiKey)

	var resp geminiResponse
	if err := postJSON(ctx, slf.cfg, url, nil, buildGeminiRequest(conv), &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &apperr.MalformedResponseError{Message: "model response contains no candidates"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
