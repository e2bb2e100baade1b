package service

import (
	"context"
	"testing"

	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/apperr"
	"dbchat/internal/llm"
	"dbchat/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays canned responses and records every conversation
// it was handed.
type scriptedProvider struct {
	responses     []string
	errs          []error
	calls         int
	conversations []llm.Conversation
}

func (slf *scriptedProvider) QueryModel(_ context.Context, conv llm.Conversation, _ string) (string, error) {
	index := slf.calls
	slf.calls++
	slf.conversations = append(slf.conversations, conv)

	if index < len(slf.errs) && slf.errs[index] != nil {
		return "", slf.errs[index]
	}
	return slf.responses[index], nil
}

func newLoopService(retries int) *QueryService {
	var cfg dbchat.AppConfig
	cfg.Translation.Retries = retries
	return &QueryService{config: cfg}
}

func noExecution(t *testing.T) func(string) (*query.Outcome, error) {
	return func(string) (*query.Outcome, error) {
		t.Fatal("execute should not have been called")
		return nil, nil
	}
}

const goodResponse = `{"databaseQuery": "SELECT name FROM user", "generatePlot": false, "pythonCode": ""}`

func TestTranslationLoop_SucceedsFirstAttempt(t *testing.T) {
	provider := &scriptedProvider{responses: []string{goodResponse}}
	service := newLoopService(3)

	outcome := &query.Outcome{Columns: []string{"name"}, TotalCount: 1}
	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, func(q string) (*query.Outcome, error) {
			assert.Equal(t, "SELECT name FROM user", q)
			return outcome, nil
		})

	require.NoError(t, result.fatal)
	assert.False(t, result.exhausted)
	assert.Equal(t, 1, provider.calls)
	assert.Empty(t, result.accumulated)
	assert.Same(t, outcome, result.outcome)
	assert.Equal(t, "SELECT name FROM user", result.parsed.DatabaseQuery)
}

func TestTranslationLoop_ParseFailuresThenSuccess(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"not json", "still not json", goodResponse}}
	service := newLoopService(3)

	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, func(string) (*query.Outcome, error) {
			return &query.Outcome{}, nil
		})

	require.NoError(t, result.fatal)
	assert.False(t, result.exhausted)
	assert.Equal(t, 3, provider.calls)

	// the model saw exactly the first two parse failures, oldest first
	require.Len(t, result.accumulated, 2)
	assert.Contains(t, result.accumulated[0], "the response could not be parsed: ")
	assert.Contains(t, result.accumulated[1], "the response could not be parsed: ")

	assert.Empty(t, provider.conversations[0].Errors)
	require.Len(t, provider.conversations[2].Errors, 2)
	assert.Equal(t, result.accumulated, provider.conversations[2].Errors)
}

func TestTranslationLoop_ExecutionErrorFedBackVerbatim(t *testing.T) {
	provider := &scriptedProvider{responses: []string{goodResponse, goodResponse}}
	service := newLoopService(3)

	driverMessage := `ERROR: column "namez" does not exist`
	attempt := 0
	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, func(string) (*query.Outcome, error) {
			attempt++
			if attempt == 1 {
				return nil, &apperr.DatabaseExecutionError{Message: driverMessage}
			}
			return &query.Outcome{}, nil
		})

	require.NoError(t, result.fatal)
	assert.Equal(t, 2, provider.calls)
	require.Len(t, provider.conversations[1].Errors, 1)
	assert.Equal(t, driverMessage, provider.conversations[1].Errors[0])
}

func TestTranslationLoop_Exhausted(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"bad", "bad", "bad"}}
	service := newLoopService(3)

	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, noExecution(t))

	require.NoError(t, result.fatal)
	assert.True(t, result.exhausted)
	// exactly the retry budget, never more
	assert.Equal(t, 3, provider.calls)
	assert.Len(t, result.accumulated, 3)
	assert.NotEmpty(t, result.lastError)
}

func TestTranslationLoop_ProviderErrorIsFatal(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{""},
		errs:      []error{&apperr.ProviderCallError{Message: "model call failed"}},
	}
	service := newLoopService(3)

	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, noExecution(t))

	require.Error(t, result.fatal)
	var providerErr *apperr.ProviderCallError
	assert.ErrorAs(t, result.fatal, &providerErr)
	// no retry after an infrastructure failure
	assert.Equal(t, 1, provider.calls)
}

func TestTranslationLoop_BadRequestIsFatal(t *testing.T) {
	provider := &scriptedProvider{responses: []string{goodResponse}}
	service := newLoopService(3)

	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "show names", Model: "gpt-4o"},
		"system", nil, func(string) (*query.Outcome, error) {
			return nil, &apperr.BadRequest{Message: "Page number cannot be negative, page=-1"}
		})

	require.Error(t, result.fatal)
	var badRequest *apperr.BadRequest
	assert.ErrorAs(t, result.fatal, &badRequest)
	assert.Equal(t, 1, provider.calls)
}

func TestTranslationLoop_PlotOnlyTurnSkipsExecution(t *testing.T) {
	plotOnly := `{"databaseQuery": "", "generatePlot": true, "pythonCode": "plt.savefig('x')"}`
	provider := &scriptedProvider{responses: []string{plotOnly}}
	service := newLoopService(3)

	result := service.runTranslationLoop(context.Background(), provider, request.QueryDTO{Query: "plot it", Model: "gpt-4o"},
		"system", nil, noExecution(t))

	require.NoError(t, result.fatal)
	assert.Nil(t, result.outcome)
	assert.True(t, result.parsed.GeneratePlot)
	assert.Equal(t, "plt.savefig('x')", result.parsed.PythonCode)
}
