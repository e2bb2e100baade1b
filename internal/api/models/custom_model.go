package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomModel is a user-registered self-hosted LLM endpoint. Chat turns can
// name it by id instead of one of the built-in model identifiers.
type CustomModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    uint           `gorm:"not null;index;column:user_id"`
	User      User           `gorm:"foreignKey:UserID"`
	Name      string         `gorm:"not null"`
	Host      string         `gorm:"not null"`
	Port      int            `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (CustomModel) TableName() string {
	return "custom_models"
}

// URL joins host and port into the endpoint the provider posts to.
func (slf CustomModel) URL() string {
	return slf.Host + ":" + strconv.Itoa(slf.Port)
}
