package endpoints

import (
	"net/http"

	"dbchat"
	"dbchat/internal/api/handler/middleware"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/service"
	"dbchat/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type chatHandler struct {
	chatService  *service.ChatService
	queryService *service.QueryService
	config       dbchat.AppConfig
	logger       zerolog.Logger
}

func ChatHandler(router *graceful.Graceful, chatService *service.ChatService, queryService *service.QueryService) {
	h := &chatHandler{
		chatService:  chatService,
		queryService: queryService,
		config:       dbchat.GetConfig(),
		logger:       dbchat.Logger,
	}

	routes := router.Group("/api/v1/chats")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("", h.create)
		routes.GET("", h.list)
		routes.PUT("/:id/name", h.rename)
		routes.DELETE("/:id", h.delete)
		routes.GET("/:id/messages", h.messages)
		routes.POST("/:id/query", h.query)
		routes.GET("/:id/messages/:messageId/data", h.messageData)
	}

	console := router.Group("/api/v1/databases/:id/console")
	console.Use(middleware.AuthMiddleware(h.config))
	{
		console.POST("", h.console)
	}
}

func (slf *chatHandler) create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var dto request.CreateChatDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	databaseID, err := uuid.Parse(dto.DatabaseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid databaseId"})
		return
	}

	chat, err := slf.chatService.Create(userID, databaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (slf *chatHandler) list(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	databaseID, err := uuid.Parse(c.Query("databaseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Query parameter 'databaseId' is required"})
		return
	}

	chats, err := slf.chatService.List(userID, databaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (slf *chatHandler) rename(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var dto request.RenameChatDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	if err := slf.chatService.Rename(userID, id, dto.Name); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (slf *chatHandler) delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := slf.chatService.Delete(userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (slf *chatHandler) messages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	messages, err := slf.chatService.Messages(userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// query runs one translation turn in a chat.
func (slf *chatHandler) query(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var dto request.QueryDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.queryService.ExecuteChat(c.Request.Context(), userID, id, dto)
	if err != nil {
		slf.logger.Error().Err(err).Str("chatId", id.String()).Msg("Chat turn failed")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// messageData pages through the stored result of a past turn.
func (slf *chatHandler) messageData(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	messageID, ok := uuidParam(c, "messageId")
	if !ok {
		return
	}
	page, ok := intQuery(c, "page")
	if !ok {
		return
	}
	pageSize, ok := intQuery(c, "pageSize")
	if !ok {
		return
	}

	data, err := slf.queryService.LoadMessageData(c.Request.Context(), userID, chatID, messageID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// console runs a user-written query directly against a database.
func (slf *chatHandler) console(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	databaseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var dto request.ConsoleQueryDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.queryService.ExecuteConsole(c.Request.Context(), userID, databaseID, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
