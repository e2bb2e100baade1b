package service

import (
	"testing"

	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCustomModelTestDB(t *testing.T) uint {
	dbchat.InitConfig("../../../.env.test")

	err := dbchat.DB.AutoMigrate(&models.User{}, &models.CustomModel{})
	require.NoError(t, err, "Failed to migrate custom model tables")

	userService := NewUserService()
	result, err := userService.Register(request.RegisterDTO{
		Email:     uniqueEmail(),
		Password:  "testpassword123",
		FirstName: "Jean",
		LastName:  "Dupont",
	})
	require.NoError(t, err, "Failed to register owner")
	t.Cleanup(func() { cleanupUser(t, result.User.ID) })
	return result.User.ID
}

func cleanupCustomModel(id uuid.UUID) {
	dbchat.DB.Unscoped().Delete(&models.CustomModel{}, "id = ?", id)
}

func TestCustomModel_CRUD(t *testing.T) {
	userID := setupCustomModelTestDB(t)
	service := NewCustomModelService()

	created, err := service.Create(userID, request.CreateCustomModelDTO{
		Name: "llama3-local",
		Host: "http://localhost",
		Port: 8000,
	})
	require.NoError(t, err)
	defer cleanupCustomModel(created.ID)

	found, err := service.GetByID(userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "llama3-local", found.Name)
	assert.Equal(t, "http://localhost", found.Host)
	assert.Equal(t, 8000, found.Port)

	list, err := service.List(userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	newPort := 8080
	updated, err := service.Update(userID, created.ID, request.UpdateCustomModelDTO{Port: &newPort})
	require.NoError(t, err)
	assert.Equal(t, 8080, updated.Port)

	require.NoError(t, service.Delete(userID, created.ID))
	_, err = service.GetByID(userID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomModel_OwnershipEnforced(t *testing.T) {
	userID := setupCustomModelTestDB(t)
	service := NewCustomModelService()

	created, err := service.Create(userID, request.CreateCustomModelDTO{
		Name: "llama3-local",
		Host: "http://localhost",
		Port: 8000,
	})
	require.NoError(t, err)
	defer cleanupCustomModel(created.ID)

	_, err = service.GetByID(userID+1, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = service.Delete(userID+1, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomModel_Options(t *testing.T) {
	userID := setupCustomModelTestDB(t)
	service := NewCustomModelService()

	created, err := service.Create(userID, request.CreateCustomModelDTO{
		Name: "llama3-local",
		Host: "http://localhost",
		Port: 8000,
	})
	require.NoError(t, err)
	defer cleanupCustomModel(created.ID)

	options, err := service.Options(userID)
	require.NoError(t, err)
	require.Len(t, options, len(builtinModelOptions)+1)
	assert.Equal(t, builtinModelOptions[0], options[0])

	// registered endpoints come after the built-ins, keyed by id
	last := options[len(options)-1]
	assert.Equal(t, "llama3-local", last.Label)
	assert.Equal(t, created.ID.String(), last.Value)
}

func TestCustomModel_ResolveURL(t *testing.T) {
	userID := setupCustomModelTestDB(t)
	service := NewCustomModelService()

	url, custom, err := service.ResolveURL(userID, "gpt-4o")
	require.NoError(t, err)
	assert.False(t, custom)
	assert.Empty(t, url)

	created, err := service.Create(userID, request.CreateCustomModelDTO{
		Name: "llama3-local",
		Host: "http://localhost",
		Port: 8000,
	})
	require.NoError(t, err)
	defer cleanupCustomModel(created.ID)

	url, custom, err = service.ResolveURL(userID, created.ID.String())
	require.NoError(t, err)
	assert.True(t, custom)
	assert.Equal(t, "http://localhost:8000", url)

	// someone else's registration is invisible
	_, _, err = service.ResolveURL(userID+1, created.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}
