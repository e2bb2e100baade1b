package repo

import (
	"dbchat"
	"dbchat/internal/api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DatabaseRepository struct {
	Db *gorm.DB
}

func NewDatabaseRepository() *DatabaseRepository {
	return &DatabaseRepository{Db: dbchat.DB}
}

func (slf *DatabaseRepository) FindByID(id uuid.UUID) (models.Database, error) {
	var database models.Database
	err := slf.Db.First(&database, "id = ?", id).Error
	return database, err
}

func (slf *DatabaseRepository) FindByUser(userID uint) ([]models.Database, error) {
	var databases []models.Database
	err := slf.Db.Where("user_id = ?", userID).Order("created_at").Find(&databases).Error
	return databases, err
}

func (slf *DatabaseRepository) Create(database *models.Database) error {
	return slf.Db.Create(database).Error
}

func (slf *DatabaseRepository) Update(database *models.Database) error {
	return slf.Db.Save(database).Error
}

func (slf *DatabaseRepository) Delete(id uuid.UUID) error {
	return slf.Db.Delete(&models.Database{}, "id = ?", id).Error
}
