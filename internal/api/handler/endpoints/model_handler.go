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

type customModelHandler struct {
	customModelService *service.CustomModelService
	config             dbchat.AppConfig
	logger             zerolog.Logger
}

func CustomModelHandler(router *graceful.Graceful, customModelService *service.CustomModelService) {
	h := &customModelHandler{
		customModelService: customModelService,
		config:             dbchat.GetConfig(),
		logger:             dbchat.Logger,
	}

	options := router.Group("/api/v1/models")
	options.Use(middleware.AuthMiddleware(h.config))
	{
		options.GET("", h.options)
	}

	routes := router.Group("/api/v1/custom-models")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
	}
}

// options feeds the model picker: built-in models plus the caller's own
// registered endpoints.
func (slf *customModelHandler) options(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	models, err := slf.customModelService.Options(userID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing model options")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}

func (slf *customModelHandler) list(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	models, err := slf.customModelService.List(userID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing custom models")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}

func (slf *customModelHandler) getByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	model, err := slf.customModelService.GetByID(userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

func (slf *customModelHandler) create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var dto request.CreateCustomModelDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	model, err := slf.customModelService.Create(userID, dto)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error creating custom model")
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model)
}

func (slf *customModelHandler) update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var dto request.UpdateCustomModelDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	model, err := slf.customModelService.Update(userID, id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

func (slf *customModelHandler) delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := slf.customModelService.Delete(userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
