package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Database is a user-registered connection target. The password is stored
// AES-GCM encrypted and only decrypted right before a connection is opened.
type Database struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    uint           `gorm:"not null;index;column:user_id"`
	User      User           `gorm:"foreignKey:UserID"`
	Name      string         `gorm:"not null"`
	Engine    string         `gorm:"not null"` // postgres, mysql, sqlserver
	Host      string         `gorm:"not null"`
	Port      int            `gorm:"not null"`
	Username  string         `gorm:"not null"`
	Password  string         `gorm:"not null;column:password"` // encrypted
	DbName    string         `gorm:"not null;column:db_name"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (Database) TableName() string {
	return "databases"
}
