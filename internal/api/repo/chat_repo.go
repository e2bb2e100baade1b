package repo

import (
	"dbchat"
	"dbchat/internal/api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository struct {
	Db *gorm.DB
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{Db: dbchat.DB}
}

func (slf *ChatRepository) FindByID(id uuid.UUID) (models.Chat, error) {
	var chat models.Chat
	err := slf.Db.First(&chat, "id = ?", id).Error
	return chat, err
}

func (slf *ChatRepository) FindByDatabase(databaseID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := slf.Db.Where("database_id = ?", databaseID).Order("created_at desc").Find(&chats).Error
	return chats, err
}

func (slf *ChatRepository) Create(chat *models.Chat) error {
	return slf.Db.Create(chat).Error
}

func (slf *ChatRepository) Rename(id uuid.UUID, name string) error {
	return slf.Db.Model(&models.Chat{}).Where("id = ?", id).Update("name", name).Error
}

func (slf *ChatRepository) Delete(id uuid.UUID) error {
	if err := slf.Db.Delete(&models.ChatMessage{}, "chat_id = ?", id).Error; err != nil {
		return err
	}
	return slf.Db.Delete(&models.Chat{}, "id = ?", id).Error
}

// Messages returns the turns of a chat ordered oldest first, the order in
// which they are replayed into the model conversation.
func (slf *ChatRepository) Messages(chatID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := slf.Db.Where("chat_id = ?", chatID).Order("timestamp").Find(&messages).Error
	return messages, err
}

func (slf *ChatRepository) FindMessageByID(id uuid.UUID) (models.ChatMessage, error) {
	var message models.ChatMessage
	err := slf.Db.First(&message, "id = ?", id).Error
	return message, err
}

func (slf *ChatRepository) AddMessage(message *models.ChatMessage) error {
	return slf.Db.Create(message).Error
}
