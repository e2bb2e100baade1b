package endpoints

import (
	"dbchat"
	"dbchat/internal/api/handler/middleware"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/service"
	"dbchat/pkg"
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type authHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
	config      dbchat.AppConfig
}

func newAuthHandler() *authHandler {
	return &authHandler{
		userService: service.NewUserService(),
		logger:      dbchat.Logger,
		config:      dbchat.GetConfig(),
	}
}

func AuthHandler(router *graceful.Graceful) {
	h := newAuthHandler()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refreshToken)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(h.config))
	{
		protected.GET("/me", h.getMe)
	}
}

func (slf *authHandler) register(c *gin.Context) {
	var registerDTO request.RegisterDTO

	err := pkg.ParseAndValidate(c, &registerDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating register DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.Register(registerDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error registering user")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, authResponse)
}

func (slf *authHandler) login(c *gin.Context) {
	var loginDTO request.LoginDTO
	err := pkg.ParseAndValidate(c, &loginDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating login DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.Login(loginDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error logging in user")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

func (slf *authHandler) getMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.APIError{Message: "User not authenticated"})
		return
	}

	user, err := slf.userService.GetByID(userID.(uint))
	if err != nil {
		slf.logger.Error().Err(err).Uint("userId", userID.(uint)).Msg("Error getting user")
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (slf *authHandler) refreshToken(c *gin.Context) {
	var refreshDTO request.RefreshTokenDTO
	err := pkg.ParseAndValidate(c, &refreshDTO)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error parsing and validating refresh token DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	authResponse, err := slf.userService.RefreshToken(refreshDTO.RefreshToken)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error refreshing token")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, authResponse)
}
