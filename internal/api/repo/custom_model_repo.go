package repo

import (
	"dbchat"
	"dbchat/internal/api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomModelRepository struct {
	Db *gorm.DB
}

func NewCustomModelRepository() *CustomModelRepository {
	return &CustomModelRepository{Db: dbchat.DB}
}

func (slf *CustomModelRepository) FindByID(id uuid.UUID) (models.CustomModel, error) {
	var model models.CustomModel
	err := slf.Db.First(&model, "id = ?", id).Error
	return model, err
}

func (slf *CustomModelRepository) FindByUser(userID uint) ([]models.CustomModel, error) {
	var customModels []models.CustomModel
	err := slf.Db.Where("user_id = ?", userID).Order("created_at").Find(&customModels).Error
	return customModels, err
}

func (slf *CustomModelRepository) Create(model *models.CustomModel) error {
	return slf.Db.Create(model).Error
}

func (slf *CustomModelRepository) Update(model *models.CustomModel) error {
	return slf.Db.Save(model).Error
}

func (slf *CustomModelRepository) Delete(id uuid.UUID) error {
	return slf.Db.Delete(&models.CustomModel{}, "id = ?", id).Error
}
