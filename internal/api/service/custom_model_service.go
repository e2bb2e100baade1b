package service

import (
	"errors"

	"dbchat"
	"dbchat/internal/api/handler/request"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/models"
	"dbchat/internal/api/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// builtinModelOptions are the hosted models every account can pick from.
// Registered custom endpoints are appended per user.
var builtinModelOptions = []response.ModelOptionDTO{
	{Label: "GPT 5 mini", Value: "gpt-5-mini"},
	{Label: "GPT 5.2", Value: "gpt-5.2"},
	{Label: "GPT 5 nano", Value: "gpt-5-nano"},
	{Label: "GPT 4o mini", Value: "gpt-4o-mini"},
	{Label: "GPT 4o", Value: "gpt-4o"},
	{Label: "Claude 4.5 haiku", Value: "claude-haiku-4-5-20251001"},
	{Label: "Gemini 2.0 Flash", Value: "gemini-2.0-flash"},
}

// CustomModelService manages user-registered self-hosted LLM endpoints.
type CustomModelService struct {
	customModelRepo *repo.CustomModelRepository
	logger          zerolog.Logger
}

func NewCustomModelService() *CustomModelService {
	return &CustomModelService{
		customModelRepo: repo.NewCustomModelRepository(),
		logger:          dbchat.Logger,
	}
}

func (slf *CustomModelService) Create(userID uint, dto request.CreateCustomModelDTO) (*response.CustomModelResponseDTO, error) {
	model := models.CustomModel{
		ID:     uuid.New(),
		UserID: userID,
		Name:   dto.Name,
		Host:   dto.Host,
		Port:   dto.Port,
	}

	if err := slf.customModelRepo.Create(&model); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating custom model")
		return nil, err
	}

	slf.logger.Info().Str("customModelId", model.ID.String()).Uint("userId", userID).Msg("Custom model registered")
	result := customModelToResponse(model)
	return &result, nil
}

func (slf *CustomModelService) GetByID(userID uint, id uuid.UUID) (*response.CustomModelResponseDTO, error) {
	model, err := slf.owned(userID, id)
	if err != nil {
		return nil, err
	}
	result := customModelToResponse(*model)
	return &result, nil
}

func (slf *CustomModelService) List(userID uint) ([]response.CustomModelResponseDTO, error) {
	customModels, err := slf.customModelRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	results := make([]response.CustomModelResponseDTO, 0, len(customModels))
	for _, model := range customModels {
		results = append(results, customModelToResponse(model))
	}
	return results, nil
}

func (slf *CustomModelService) Update(userID uint, id uuid.UUID, dto request.UpdateCustomModelDTO) (*response.CustomModelResponseDTO, error) {
	model, err := slf.owned(userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		model.Name = *dto.Name
	}
	if dto.Host != nil {
		model.Host = *dto.Host
	}
	if dto.Port != nil {
		model.Port = *dto.Port
	}

	if err := slf.customModelRepo.Update(model); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating custom model")
		return nil, err
	}

	result := customModelToResponse(*model)
	return &result, nil
}

func (slf *CustomModelService) Delete(userID uint, id uuid.UUID) error {
	if _, err := slf.owned(userID, id); err != nil {
		return err
	}
	return slf.customModelRepo.Delete(id)
}

// Options lists everything the user can run a chat against: the built-in
// models plus the user's own registered endpoints, keyed by their id.
func (slf *CustomModelService) Options(userID uint) ([]response.ModelOptionDTO, error) {
	customModels, err := slf.customModelRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	options := make([]response.ModelOptionDTO, 0, len(builtinModelOptions)+len(customModels))
	options = append(options, builtinModelOptions...)
	for _, model := range customModels {
		options = append(options, response.ModelOptionDTO{Label: model.Name, Value: model.ID.String()})
	}
	return options, nil
}

// ResolveURL maps a model identifier to a registered endpoint. Identifiers
// that are not UUIDs are built-in models and resolve to ok=false; UUIDs must
// name an endpoint owned by the user.
func (slf *CustomModelService) ResolveURL(userID uint, model string) (string, bool, error) {
	id, err := uuid.Parse(model)
	if err != nil {
		return "", false, nil
	}

	custom, err := slf.owned(userID, id)
	if err != nil {
		return "", false, err
	}
	return custom.URL(), true, nil
}

func (slf *CustomModelService) owned(userID uint, id uuid.UUID) (*models.CustomModel, error) {
	model, err := slf.customModelRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if model.UserID != userID {
		return nil, ErrNotFound
	}
	return &model, nil
}

func customModelToResponse(model models.CustomModel) response.CustomModelResponseDTO {
	return response.CustomModelResponseDTO{
		ID:   model.ID,
		Name: model.Name,
		Host: model.Host,
		Port: model.Port,
	}
}
