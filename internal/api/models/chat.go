package models

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey"`
	DatabaseID uuid.UUID     `gorm:"type:uuid;not null;index;column:database_id"`
	Database   Database      `gorm:"foreignKey:DatabaseID"`
	Name       string        `gorm:"not null"`
	Messages   []ChatMessage `gorm:"foreignKey:ChatID"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime;column:updated_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatMessage is one completed turn. LlmResponse keeps the raw model answer
// so later turns can replay it as assistant history. A turn that exhausted
// its retries is stored too, with the failure captured in DbExecutionError.
type ChatMessage struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID           uuid.UUID `gorm:"type:uuid;not null;index;column:chat_id"`
	NlQuery          string    `gorm:"not null;column:nl_query"`
	LlmResponse      string    `gorm:"type:text;column:llm_response"`
	DbQuery          *string   `gorm:"type:text;column:db_query"`
	PlotScript       *string   `gorm:"type:text;column:plot_script"`
	PlotUrl          *string   `gorm:"column:plot_url"`
	DbExecutionError *string   `gorm:"type:text;column:db_execution_error"`
	PlotError        *string   `gorm:"type:text;column:plot_error"`
	Timestamp        time.Time `gorm:"autoCreateTime;column:timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
