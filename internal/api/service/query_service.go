package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/models"
	"dbchat/internal/api/repo"
	"dbchat/internal/apperr"
	"dbchat/internal/dao"
	"dbchat/internal/events"
	"dbchat/internal/llm"
	"dbchat/internal/metrics"
	"dbchat/internal/query"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QueryService orchestrates one chat turn: build the conversation, call the
// model, parse, execute, and feed mistakes back until the retry budget runs
// out. Exhausted turns are persisted like successful ones so the chat history
// stays inspectable.
type QueryService struct {
	chatService        *ChatService
	databaseService    *DatabaseEntityService
	plotService        *PlotService
	userService        *UserService
	customModelService *CustomModelService
	chatRepo           *repo.ChatRepository
	engine             *query.Engine
	publisher          *events.Publisher
	config             dbchat.AppConfig
	logger             zerolog.Logger

	// providerFor and providerForURL are swapped out in tests
	providerFor    func(model string) llm.Provider
	providerForURL func(url string) llm.Provider

	// one in-flight run per chat
	chatLocks sync.Map
}

func NewQueryService(
	chatService *ChatService,
	databaseService *DatabaseEntityService,
	plotService *PlotService,
	userService *UserService,
	customModelService *CustomModelService,
	publisher *events.Publisher,
) *QueryService {
	cfg := dbchat.GetConfig()

	llmConfig := llm.Config{
		OpenAIURL:        cfg.LLMConfig.OpenAIURL,
		OpenAIKey:        cfg.LLMConfig.OpenAIKey,
		AnthropicURL:     cfg.LLMConfig.AnthropicURL,
		AnthropicKey:     cfg.LLMConfig.AnthropicKey,
		AnthropicVersion: cfg.LLMConfig.AnthropicVersion,
		GeminiURL:        cfg.LLMConfig.GeminiURL,
		GeminiKey:        cfg.LLMConfig.GeminiKey,
		CustomURL:        cfg.LLMConfig.CustomURL,
		CustomKey:        cfg.LLMConfig.CustomKey,
		MaxTokens:        cfg.Translation.MaxTokens,
		Timeout:          time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
	}

	return &QueryService{
		chatService:        chatService,
		databaseService:    databaseService,
		plotService:        plotService,
		userService:        userService,
		customModelService: customModelService,
		chatRepo:           repo.NewChatRepository(),
		engine: query.NewEngine(query.Settings{
			DefaultPageSize: cfg.Pagination.DefaultPageSize,
			MaxPageSize:     cfg.Pagination.MaxPageSize,
		}),
		publisher: publisher,
		config:    cfg,
		logger:    dbchat.Logger,
		providerFor: func(model string) llm.Provider {
			return llm.ForModel(model, llmConfig)
		},
		providerForURL: func(url string) llm.Provider {
			return llm.ForCustomURL(url, llmConfig)
		},
	}
}

// resolveProvider picks the backend for a model identifier. UUID identifiers
// name a self-hosted endpoint registered by the user; everything else goes
// through the prefix dispatch.
func (slf *QueryService) resolveProvider(userID uint, model string) (llm.Provider, error) {
	url, custom, err := slf.customModelService.ResolveURL(userID, model)
	if err != nil {
		return nil, err
	}
	if custom {
		return slf.providerForURL(url), nil
	}
	return slf.providerFor(model), nil
}

// ExecuteChat runs one turn of a chat. Model mistakes (unparsable response,
// failing query) are fed back to the model, oldest first, until the retry
// budget is exhausted; infrastructure failures surface immediately.
func (slf *QueryService) ExecuteChat(ctx context.Context, userID uint, chatID uuid.UUID, dto request.QueryDTO) (*response.QueryResponseDTO, error) {
	lock := slf.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	chat, database, err := slf.chatService.OwnedChat(userID, chatID)
	if err != nil {
		return nil, err
	}

	remaining, err := slf.userService.DecrementQueryLimit(userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		slf.logger.Info().Uint("userId", userID).Msg("Query limit exceeded")
		return nil, &apperr.BadRequest{Message: "Query limit exceeded"}
	}

	history, err := slf.loadHistory(chatID)
	if err != nil {
		return nil, err
	}

	ddl, err := slf.databaseService.resolveDdl(ctx, *database)
	if err != nil {
		return nil, err
	}

	systemQuery := BuildSystemQuery(ddl, database.Engine, slf.plotService.PlotDirectory())
	provider, err := slf.resolveProvider(userID, dto.Model)
	if err != nil {
		return nil, err
	}

	loop := slf.runTranslationLoop(ctx, provider, dto, systemQuery, history, func(q string) (*query.Outcome, error) {
		return slf.executeGenerated(ctx, *database, q, dto.Page, dto.PageSize)
	})
	if loop.fatal != nil {
		return nil, loop.fatal
	}

	if loop.exhausted {
		slf.logger.Warn().Str("chatId", chatID.String()).Int("attempts", slf.config.Translation.Retries).
			Str("lastError", loop.lastError).Msg("Translation retry budget exhausted")

		lastError := loop.lastError
		result, err := slf.persistTurn(ctx, chat, *database, dto.Query, loop.rawResponse, llm.ParsedResult{}, &lastError)
		if err != nil {
			return nil, err
		}
		metrics.TurnCompleted("exhausted")
		return result, nil
	}

	result, err := slf.persistTurn(ctx, chat, *database, dto.Query, loop.rawResponse, loop.parsed, nil)
	if err != nil {
		return nil, err
	}
	result.Data = loop.outcome

	metrics.TurnCompleted("success")
	return result, nil
}

// loopResult is the outcome of the retry state machine for one turn.
type loopResult struct {
	rawResponse string
	parsed      llm.ParsedResult
	outcome     *query.Outcome
	accumulated []string
	lastError   string
	exhausted   bool
	fatal       error
}

// runTranslationLoop drives the model until its answer parses and the
// generated query executes, or the retry budget is spent. Every re-entry
// rebuilds the conversation with the full accumulated error list so the
// model sees its whole mistake history for the turn.
func (slf *QueryService) runTranslationLoop(
	ctx context.Context,
	provider llm.Provider,
	dto request.QueryDTO,
	systemQuery string,
	history []llm.Exchange,
	execute func(q string) (*query.Outcome, error),
) loopResult {

	var result loopResult

	for attempt := 1; attempt <= slf.config.Translation.Retries; attempt++ {
		if attempt > 1 {
			metrics.RetryAttempt()
		}

		conversation := llm.Conversation{
			System:  systemQuery,
			History: history,
			Query:   dto.Query,
			Errors:  result.accumulated,
		}

		rawResponse, err := provider.QueryModel(ctx, conversation, dto.Model)
		if err != nil {
			if !apperr.Retryable(err) {
				metrics.ProviderCall("error")
				result.fatal = err
				return result
			}
			metrics.ProviderCall("malformed")
			result.accumulated = append(result.accumulated, "the response could not be parsed: "+err.Error())
			result.lastError = err.Error()
			continue
		}
		metrics.ProviderCall("ok")
		result.rawResponse = rawResponse

		parsed, err := llm.ParseResult(rawResponse)
		if err != nil {
			result.accumulated = append(result.accumulated, "the response could not be parsed: "+err.Error())
			result.lastError = err.Error()
			continue
		}

		var outcome *query.Outcome
		if parsed.DatabaseQuery != "" {
			outcome, err = execute(parsed.DatabaseQuery)
			if err != nil {
				var executionErr *apperr.DatabaseExecutionError
				if errors.As(err, &executionErr) {
					// fed back verbatim so the model can fix its query
					result.accumulated = append(result.accumulated, executionErr.Message)
					result.lastError = executionErr.Message
					continue
				}
				result.fatal = err
				return result
			}
		}

		result.parsed = parsed
		result.outcome = outcome
		return result
	}

	result.exhausted = true
	return result
}

// ExecuteConsole runs a user-written query directly against a registered
// database, outside of any chat. The same pagination and SELECT-only rules
// apply; nothing is persisted.
func (slf *QueryService) ExecuteConsole(ctx context.Context, userID uint, databaseID uuid.UUID, dto request.ConsoleQueryDTO) (*query.Outcome, error) {
	database, err := slf.databaseService.owned(userID, databaseID)
	if err != nil {
		return nil, err
	}
	return slf.executeGenerated(ctx, *database, dto.Query, dto.Page, dto.PageSize)
}

// LoadMessageData re-executes the stored query of a past turn so the result
// table can be paged through after the fact.
func (slf *QueryService) LoadMessageData(ctx context.Context, userID uint, chatID, messageID uuid.UUID, page, pageSize *int) (*query.Outcome, error) {
	_, database, err := slf.chatService.OwnedChat(userID, chatID)
	if err != nil {
		return nil, err
	}

	message, err := slf.chatRepo.FindMessageByID(messageID)
	if err != nil || message.ChatID != chatID {
		return nil, ErrNotFound
	}
	if message.DbQuery == nil {
		return nil, ErrNotFound
	}

	return slf.executeGenerated(ctx, *database, *message.DbQuery, page, pageSize)
}

// executeGenerated opens a fresh connection, runs the query paginated and
// releases the connection before returning. No connection survives a retry.
func (slf *QueryService) executeGenerated(ctx context.Context, database models.Database, q string, page, pageSize *int) (*query.Outcome, error) {
	cfg, err := slf.databaseService.connConfig(database)
	if err != nil {
		return nil, err
	}

	d, err := dao.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	return slf.engine.Execute(ctx, d, q, page, pageSize)
}

// persistTurn stores the finished turn and, when requested, runs the plot
// script. The plot gets exactly one attempt; its failure is recorded next to
// the query result, not instead of it.
func (slf *QueryService) persistTurn(
	ctx context.Context,
	chat *models.Chat,
	database models.Database,
	nlQuery string,
	rawResponse string,
	parsed llm.ParsedResult,
	executionError *string,
) (*response.QueryResponseDTO, error) {

	message := models.ChatMessage{
		ID:               uuid.New(),
		ChatID:           chat.ID,
		NlQuery:          nlQuery,
		LlmResponse:      rawResponse,
		DbExecutionError: executionError,
	}
	if parsed.DatabaseQuery != "" {
		message.DbQuery = &parsed.DatabaseQuery
	}

	if parsed.GeneratePlot && parsed.PythonCode != "" {
		message.PlotScript = &parsed.PythonCode

		fileName := CreateFileName(chat.ID, message.ID)
		if err := slf.runPlot(ctx, database, parsed.PythonCode, fileName); err != nil {
			metrics.PlotRun("error")
			plotError := plotErrorMessage(err)
			message.PlotError = &plotError
		} else {
			metrics.PlotRun("ok")
			fileURL := CreateFileURL(fileName)
			message.PlotUrl = &fileURL
		}
	}

	if err := slf.chatRepo.AddMessage(&message); err != nil {
		slf.logger.Error().Err(err).Str("chatId", chat.ID.String()).Msg("Error persisting chat turn")
		return nil, err
	}

	slf.chatService.RenameFromFirstMessage(chat, nlQuery)

	slf.publisher.PublishTurn(events.TurnEvent{
		ChatID:    chat.ID,
		MessageID: message.ID,
		Success:   executionError == nil,
		Plot:      message.PlotUrl != nil,
		Timestamp: time.Now(),
	})

	return &response.QueryResponseDTO{Message: MessageToResponse(message)}, nil
}

// loadHistory turns the persisted chat into provider-neutral exchanges,
// oldest first.
func (slf *QueryService) loadHistory(chatID uuid.UUID) ([]llm.Exchange, error) {
	messages, err := slf.chatRepo.Messages(chatID)
	if err != nil {
		slf.logger.Error().Err(err).Str("chatId", chatID.String()).Msg("Error loading chat history")
		return nil, err
	}

	history := make([]llm.Exchange, 0, len(messages))
	for _, message := range messages {
		history = append(history, llm.Exchange{
			Prompt:   message.NlQuery,
			Response: message.LlmResponse,
		})
	}
	return history, nil
}

func (slf *QueryService) runPlot(ctx context.Context, database models.Database, script string, fileName string) error {
	cfg, err := slf.databaseService.connConfig(database)
	if err != nil {
		return err
	}
	return slf.plotService.GeneratePlot(ctx, script, cfg, fileName)
}

func (slf *QueryService) lockFor(chatID uuid.UUID) *sync.Mutex {
	lock, _ := slf.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func plotErrorMessage(err error) string {
	var plotErr *apperr.PlotScriptExecutionError
	if errors.As(err, &plotErr) && plotErr.Output != "" {
		return plotErr.Output
	}
	return err.Error()
}
