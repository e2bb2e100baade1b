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
	"github.com/rs/zerolog"
)

type databaseHandler struct {
	databaseService *service.DatabaseEntityService
	config          dbchat.AppConfig
	logger          zerolog.Logger
}

func DatabaseHandler(router *graceful.Graceful, databaseService *service.DatabaseEntityService) {
	h := &databaseHandler{
		databaseService: databaseService,
		config:          dbchat.GetConfig(),
		logger:          dbchat.Logger,
	}

	routes := router.Group("/api/v1/databases")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
		routes.POST("/test-connection", h.testConnection)
		routes.GET("/:id/schema", h.schema)
	}
}

func (slf *databaseHandler) list(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	databases, err := slf.databaseService.List(userID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing databases")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, databases)
}

func (slf *databaseHandler) getByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	database, err := slf.databaseService.GetByID(userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, database)
}

func (slf *databaseHandler) create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var dto request.CreateDatabaseDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	database, err := slf.databaseService.Create(userID, dto)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error creating database")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, database)
}

func (slf *databaseHandler) update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var dto request.UpdateDatabaseDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	database, err := slf.databaseService.Update(userID, id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, database)
}

func (slf *databaseHandler) delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := slf.databaseService.Delete(userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (slf *databaseHandler) testConnection(c *gin.Context) {
	var dto request.CreateDatabaseDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.databaseService.TestConnection(dto))
}

func (slf *databaseHandler) schema(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	schema, err := slf.databaseService.Schema(c.Request.Context(), userID, id)
	if err != nil {
		slf.logger.Error().Err(err).Str("databaseId", id.String()).Msg("Error introspecting database")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}
