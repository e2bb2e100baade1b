package service

import (
	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/models"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserTestDB(t *testing.T) {
	dbchat.InitConfig("../../../.env.test")

	err := dbchat.DB.AutoMigrate(&models.User{})
	require.NoError(t, err, "Failed to migrate user table")
}

func cleanupUser(t *testing.T, id uint) {
	if id > 0 {
		dbchat.DB.Unscoped().Delete(&models.User{}, id)
	}
}

func uniqueEmail() string {
	return fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
}

func TestUser_Register(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	dto := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword123",
		FirstName: "Jean",
		LastName:  "Dupont",
	}

	result, err := service.Register(dto)
	require.NoError(t, err, "Failed to register user")
	require.NotNil(t, result)
	defer cleanupUser(t, result.User.ID)

	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, email, result.User.Email)
	assert.Equal(t, "Jean", result.User.FirstName)
	assert.Equal(t, "Dupont", result.User.LastName)
	assert.True(t, result.User.Active)
	assert.Equal(t, dbchat.GetConfig().DefaultUserQueryLimit, result.User.QueryLimit)
}

func TestUser_DecrementQueryLimit(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()

	regResult, err := service.Register(request.RegisterDTO{
		Email:     uniqueEmail(),
		Password:  "testpassword",
		FirstName: "Limited",
		LastName:  "User",
	})
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	initial := regResult.User.QueryLimit

	old, err := service.DecrementQueryLimit(regResult.User.ID)
	require.NoError(t, err)
	assert.Equal(t, initial, old)

	user, err := service.GetByID(regResult.User.ID)
	require.NoError(t, err)
	assert.Equal(t, initial-1, user.QueryLimit)
}

func TestUser_DecrementQueryLimit_Exhausted(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()

	regResult, err := service.Register(request.RegisterDTO{
		Email:     uniqueEmail(),
		Password:  "testpassword",
		FirstName: "Spent",
		LastName:  "User",
	})
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	dbchat.DB.Model(&models.User{}).Where("id = ?", regResult.User.ID).Update("query_limit", 0)

	old, err := service.DecrementQueryLimit(regResult.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, old)

	// stays at zero, never negative
	user, err := service.GetByID(regResult.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.QueryLimit)
}

func TestUser_Register_DuplicateEmail(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	dto := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword123",
		FirstName: "Jean",
		LastName:  "Dupont",
	}

	result, err := service.Register(dto)
	require.NoError(t, err)
	defer cleanupUser(t, result.User.ID)

	// Try to register again with the same email
	_, err = service.Register(dto)
	require.Error(t, err, "Should fail on duplicate email")
	assert.Contains(t, err.Error(), "already exists")
}

func TestUser_Login(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	// Register first
	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "loginpassword",
		FirstName: "Marie",
		LastName:  "Martin",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	// Login
	loginDTO := request.LoginDTO{
		Email:    email,
		Password: "loginpassword",
	}

	loginResult, err := service.Login(loginDTO)
	require.NoError(t, err, "Failed to login")
	require.NotNil(t, loginResult)

	assert.NotEmpty(t, loginResult.Token)
	assert.NotEmpty(t, loginResult.RefreshToken)
	assert.Equal(t, email, loginResult.User.Email)
}

func TestUser_Login_WrongPassword(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "correctpassword",
		FirstName: "Pierre",
		LastName:  "Durand",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	loginDTO := request.LoginDTO{
		Email:    email,
		Password: "wrongpassword",
	}

	_, err = service.Login(loginDTO)
	require.Error(t, err, "Should fail on wrong password")
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestUser_Login_WrongEmail(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()

	loginDTO := request.LoginDTO{
		Email:    "nonexistent@example.com",
		Password: "anything",
	}

	_, err := service.Login(loginDTO)
	require.Error(t, err, "Should fail on wrong email")
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestUser_Login_InactiveAccount(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	// Register
	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword",
		FirstName: "Inactive",
		LastName:  "User",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	// Deactivate the user directly in DB
	dbchat.DB.Model(&models.User{}).Where("id = ?", regResult.User.ID).Update("active", false)

	loginDTO := request.LoginDTO{
		Email:    email,
		Password: "testpassword",
	}

	_, err = service.Login(loginDTO)
	require.Error(t, err, "Should fail on inactive account")
	assert.Equal(t, "account is inactive", err.Error())
}

func TestUser_GetByID(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword",
		FirstName: "GetBy",
		LastName:  "ID",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	user, err := service.GetByID(regResult.User.ID)
	require.NoError(t, err, "Failed to get user by ID")

	assert.Equal(t, regResult.User.ID, user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "GetBy", user.FirstName)
	assert.Equal(t, "ID", user.LastName)
}

func TestUser_GetByID_NotFound(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()

	_, err := service.GetByID(99999)
	require.Error(t, err, "Should return error for non-existent user")
	assert.Equal(t, "user not found", err.Error())
}

func TestUser_RefreshToken(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword",
		FirstName: "Refresh",
		LastName:  "Token",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	// Use the refresh token to get new tokens
	refreshResult, err := service.RefreshToken(regResult.RefreshToken)
	require.NoError(t, err, "Failed to refresh token")

	assert.NotEmpty(t, refreshResult.Token)
	assert.NotEmpty(t, refreshResult.RefreshToken)
	assert.Equal(t, email, refreshResult.User.Email)
}

func TestUser_RefreshToken_Invalid(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()

	_, err := service.RefreshToken("not-a-real-token")
	require.Error(t, err, "Should fail on invalid refresh token")
	assert.Contains(t, err.Error(), "invalid or expired refresh token")
}

func TestUser_RefreshToken_Mismatch(t *testing.T) {
	setupUserTestDB(t)

	service := NewUserService()
	email := uniqueEmail()

	regDTO := request.RegisterDTO{
		Email:     email,
		Password:  "testpassword",
		FirstName: "Mismatch",
		LastName:  "Test",
	}
	regResult, err := service.Register(regDTO)
	require.NoError(t, err)
	defer cleanupUser(t, regResult.User.ID)

	oldRefreshToken := regResult.RefreshToken

	// Change the stored refresh token by logging in again (which generates new tokens)
	loginDTO := request.LoginDTO{
		Email:    email,
		Password: "testpassword",
	}
	_, err = service.Login(loginDTO)
	require.NoError(t, err)

	// Try to use the old refresh token — it should be mismatched
	_, err = service.RefreshToken(oldRefreshToken)
	require.Error(t, err, "Should fail on mismatched refresh token")
	assert.Contains(t, err.Error(), "invalid refresh token")
}
