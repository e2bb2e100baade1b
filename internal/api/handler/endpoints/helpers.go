package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/service"
	"dbchat/internal/apperr"
	"dbchat/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.APIError{Message: "User not authenticated"})
		return 0, false
	}
	return userID.(uint), true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// intQuery reads an optional integer query parameter, nil when absent.
func intQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid " + name})
		return nil, false
	}
	return pkg.ToPtr(value), true
}

// respondServiceError maps the error taxonomy onto HTTP statuses. Model
// mistakes never reach here; they are consumed by the retry loop.
func respondServiceError(c *gin.Context, err error) {
	var badRequest *apperr.BadRequest
	var connectionErr *apperr.ConnectionError
	var introspectionErr *apperr.IntrospectionError
	var providerErr *apperr.ProviderCallError
	var executionErr *apperr.DatabaseExecutionError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.APIError{Message: "Not found"})
	case errors.As(err, &badRequest):
		c.JSON(http.StatusBadRequest, response.APIError{Message: badRequest.Message})
	case errors.As(err, &executionErr):
		c.JSON(http.StatusBadRequest, response.APIError{Message: executionErr.Message})
	case errors.As(err, &connectionErr):
		c.JSON(http.StatusBadGateway, response.APIError{Message: connectionErr.Message})
	case errors.As(err, &introspectionErr):
		c.JSON(http.StatusBadGateway, response.APIError{Message: introspectionErr.Message})
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadGateway, response.APIError{Message: providerErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
	}
}
