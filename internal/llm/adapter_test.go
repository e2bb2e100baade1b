package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dbchat/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConversation() Conversation {
	return Conversation{
		System: "instructions",
		History: []Exchange{
			{Prompt: "first question", Response: "first answer"},
			{Prompt: "second question", Response: "second answer"},
		},
		Query:  "new query",
		Errors: []string{"error one", "error two"},
	}
}

func TestForModel(t *testing.T) {
	cfg := Config{}

	assert.IsType(t, &openAIProvider{}, ForModel("gpt-4o", cfg))
	assert.IsType(t, &anthropicProvider{}, ForModel("claude-3-5-sonnet", cfg))
	assert.IsType(t, &geminiProvider{}, ForModel("gemini-1.5-pro", cfg))
	assert.IsType(t, &customProvider{}, ForModel("llama3", cfg))
}

func TestBuildChatCompletionRequest(t *testing.T) {
	req := buildChatCompletionRequest(testConversation(), "gpt-4o")

	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 8)

	expected := []chatMessage{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "second question"},
		{Role: "assistant", Content: "second answer"},
		{Role: "user", Content: "new query"},
		{Role: "system", Content: "error one"},
		{Role: "system", Content: "error two"},
	}
	assert.Equal(t, expected, req.Messages)
}

func TestBuildAnthropicRequest(t *testing.T) {
	req := buildAnthropicRequest(testConversation(), "claude-3-5-sonnet", 2048)

	assert.Equal(t, "claude-3-5-sonnet", req.Model)
	assert.Equal(t, 2048, req.MaxTokens)
	// system instructions travel in the dedicated field, not as a message
	assert.Equal(t, "instructions", req.System)
	require.Len(t, req.Messages, 7)

	expected := []chatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "second question"},
		{Role: "assistant", Content: "second answer"},
		{Role: "user", Content: "new query"},
		{Role: "user", Content: "error one"},
		{Role: "user", Content: "error two"},
	}
	assert.Equal(t, expected, req.Messages)
}

func TestBuildGeminiRequest(t *testing.T) {
	req := buildGeminiRequest(testConversation())

	require.Len(t, req.Contents, 8)

	roles := make([]string, 0, len(req.Contents))
	texts := make([]string, 0, len(req.Contents))
	for _, content := range req.Contents {
		require.Len(t, content.Parts, 1)
		roles = append(roles, content.Role)
		texts = append(texts, content.Parts[0].Text)
	}

	assert.Equal(t, []string{"user", "user", "model", "user", "model", "user", "user", "user"}, roles)
	assert.Equal(t, []string{
		"instructions",
		"first question", "first answer",
		"second question", "second answer",
		"new query",
		"error one", "error two",
	}, texts)
}

func TestOpenAIProvider_QueryModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer server.Close()

	provider := &openAIProvider{cfg: Config{OpenAIURL: server.URL, OpenAIKey: "test-key", Timeout: 5 * time.Second}}

	answer, err := provider.QueryModel(context.Background(), testConversation(), "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := &openAIProvider{cfg: Config{OpenAIURL: server.URL, Timeout: 5 * time.Second}}

	_, err := provider.QueryModel(context.Background(), testConversation(), "gpt-4o")

	var malformed *apperr.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestForCustomURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer custom-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer server.Close()

	// registered endpoints override the configured default URL
	cfg := Config{CustomURL: "http://unreachable.invalid", CustomKey: "custom-key", Timeout: 5 * time.Second}
	provider := ForCustomURL(server.URL, cfg)

	answer, err := provider.QueryModel(context.Background(), testConversation(), "llama3-local")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestAnthropicProvider_QueryModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		w.Write([]byte(`{"content":[{"type":"text","text":"the answer"}]}`))
	}))
	defer server.Close()

	provider := &anthropicProvider{cfg: Config{
		AnthropicURL:     server.URL,
		AnthropicKey:     "test-key",
		AnthropicVersion: "2023-06-01",
		MaxTokens:        2048,
		Timeout:          5 * time.Second,
	}}

	answer, err := provider.QueryModel(context.Background(), testConversation(), "claude-3-5-sonnet")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestGeminiProvider_QueryModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-1.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"the answer"}]}}]}`))
	}))
	defer server.Close()

	provider := &geminiProvider{cfg: Config{GeminiURL: server.URL, GeminiKey: "test-key", Timeout: 5 * time.Second}}

	answer, err := provider.QueryModel(context.Background(), testConversation(), "gemini-1.5-pro")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestProvider_HTTPErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := &openAIProvider{cfg: Config{OpenAIURL: server.URL, Timeout: 5 * time.Second}}

	_, err := provider.QueryModel(context.Background(), testConversation(), "gpt-4o")

	var providerErr *apperr.ProviderCallError
	require.ErrorAs(t, err, &providerErr)
	assert.False(t, apperr.Retryable(err))
}
