package service

import (
	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/models"
	"dbchat/internal/api/repo"
	"dbchat/pkg"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo *repo.UserRepository
	config   dbchat.AppConfig
	logger   zerolog.Logger
}

func NewUserService() *UserService {
	return &UserService{
		userRepo: repo.NewUserRepository(),
		config:   dbchat.GetConfig(),
		logger:   dbchat.Logger,
	}
}

func (slf *UserService) Register(registerDTO request.RegisterDTO) (*response.AuthResponseDTO, error) {
	exists, err := slf.userRepo.ExistsByEmail(registerDTO.Email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if user exists")
		return nil, err
	}
	if exists {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerDTO.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user := models.User{
		Email:      registerDTO.Email,
		Password:   string(hashedPassword),
		FirstName:  registerDTO.FirstName,
		LastName:   registerDTO.LastName,
		Active:     true,
		QueryLimit: slf.config.DefaultUserQueryLimit,
	}

	if err = slf.userRepo.Create(&user); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	authResponse, err := slf.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	slf.logger.Info().Uint("userId", user.ID).Msg("User registered successfully")
	return authResponse, nil
}

func (slf *UserService) Login(loginDTO request.LoginDTO) (*response.AuthResponseDTO, error) {
	user, err := slf.userRepo.FindByEmail(loginDTO.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		slf.logger.Error().Err(err).Msg("Error finding user by email")
		return nil, err
	}

	if !user.Active {
		return nil, errors.New("account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginDTO.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	authResponse, err := slf.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	slf.logger.Info().Uint("userId", user.ID).Msg("User logged in successfully")
	return authResponse, nil
}

func (slf *UserService) RefreshToken(refreshToken string) (*response.AuthResponseDTO, error) {
	claims, err := pkg.ValidateRefreshToken(refreshToken, slf.config.JWTConfig.Secret)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid refresh token")
		return nil, errors.New("invalid or expired refresh token")
	}

	user, err := slf.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		slf.logger.Error().Err(err).Uint("userId", claims.UserID).Msg("Error finding user by ID")
		return nil, err
	}

	if !user.Active {
		return nil, errors.New("account is inactive")
	}

	if user.RefreshToken != refreshToken {
		slf.logger.Warn().Uint("userId", user.ID).Msg("Refresh token mismatch")
		return nil, errors.New("invalid refresh token")
	}

	return slf.issueTokens(&user)
}

func (slf *UserService) GetByID(id uint) (response.UserResponseDTO, error) {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.UserResponseDTO{}, errors.New("user not found")
		}
		slf.logger.Error().Err(err).Uint("userId", id).Msg("Error finding user by ID")
		return response.UserResponseDTO{}, err
	}

	return userToResponse(user), nil
}

// DecrementQueryLimit consumes one translation turn and returns the limit as
// it was before the call, so a caller seeing 0 knows the budget was already
// spent. The stored value never goes below zero.
func (slf *UserService) DecrementQueryLimit(id uint) (int, error) {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("user not found")
		}
		return 0, err
	}

	oldLimit := user.QueryLimit
	if oldLimit > 0 {
		user.QueryLimit = oldLimit - 1
		if err := slf.userRepo.Update(&user); err != nil {
			slf.logger.Error().Err(err).Uint("userId", id).Msg("Error decrementing query limit")
			return 0, err
		}
	}
	return oldLimit, nil
}

// issueTokens generates a fresh token pair and persists the refresh token.
func (slf *UserService) issueTokens(user *models.User) (*response.AuthResponseDTO, error) {
	token, err := pkg.GenerateToken(user.ID, user.Email, slf.config.JWTConfig.Secret, slf.config.JWTConfig.Expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		return nil, err
	}

	refreshToken, err := pkg.GenerateRefreshToken(user.ID, slf.config.JWTConfig.Secret, slf.config.JWTConfig.RefreshExpiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating refresh token")
		return nil, err
	}

	user.RefreshToken = refreshToken
	if err = slf.userRepo.Update(user); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating user with refresh token")
		return nil, err
	}

	return &response.AuthResponseDTO{
		Token:        token,
		RefreshToken: refreshToken,
		User:         userToResponse(*user),
	}, nil
}

func userToResponse(user models.User) response.UserResponseDTO {
	return response.UserResponseDTO{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Active:     user.Active,
		QueryLimit: user.QueryLimit,
	}
}
