package service

import (
	"errors"

	"dbchat"
	"dbchat/internal/api/handler/response"
	"dbchat/internal/api/models"
	"dbchat/internal/api/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const newChatName = "New chat"

// maximum chat name length when derived from the first message
const chatNameMaxLength = 32

type ChatService struct {
	chatRepo     *repo.ChatRepository
	databaseRepo *repo.DatabaseRepository
	plotService  *PlotService
	logger       zerolog.Logger
}

func NewChatService(plotService *PlotService) *ChatService {
	return &ChatService{
		chatRepo:     repo.NewChatRepository(),
		databaseRepo: repo.NewDatabaseRepository(),
		plotService:  plotService,
		logger:       dbchat.Logger,
	}
}

func (slf *ChatService) Create(userID uint, databaseID uuid.UUID) (*response.ChatResponseDTO, error) {
	if _, err := slf.ownedDatabase(userID, databaseID); err != nil {
		return nil, err
	}

	chat := models.Chat{
		ID:         uuid.New(),
		DatabaseID: databaseID,
		Name:       newChatName,
	}
	if err := slf.chatRepo.Create(&chat); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating chat")
		return nil, err
	}

	result := chatToResponse(chat)
	return &result, nil
}

func (slf *ChatService) List(userID uint, databaseID uuid.UUID) ([]response.ChatResponseDTO, error) {
	if _, err := slf.ownedDatabase(userID, databaseID); err != nil {
		return nil, err
	}

	chats, err := slf.chatRepo.FindByDatabase(databaseID)
	if err != nil {
		return nil, err
	}

	results := make([]response.ChatResponseDTO, 0, len(chats))
	for _, chat := range chats {
		results = append(results, chatToResponse(chat))
	}
	return results, nil
}

func (slf *ChatService) Rename(userID uint, chatID uuid.UUID, name string) error {
	if _, _, err := slf.OwnedChat(userID, chatID); err != nil {
		return err
	}
	return slf.chatRepo.Rename(chatID, name)
}

// Delete removes the chat with its turns and any plot images it produced.
func (slf *ChatService) Delete(userID uint, chatID uuid.UUID) error {
	if _, _, err := slf.OwnedChat(userID, chatID); err != nil {
		return err
	}
	if err := slf.chatRepo.Delete(chatID); err != nil {
		return err
	}
	slf.plotService.DeletePlots(chatID.String())
	return nil
}

func (slf *ChatService) Messages(userID uint, chatID uuid.UUID) ([]response.MessageResponseDTO, error) {
	if _, _, err := slf.OwnedChat(userID, chatID); err != nil {
		return nil, err
	}

	messages, err := slf.chatRepo.Messages(chatID)
	if err != nil {
		return nil, err
	}

	results := make([]response.MessageResponseDTO, 0, len(messages))
	for _, message := range messages {
		results = append(results, MessageToResponse(message))
	}
	return results, nil
}

// RenameFromFirstMessage gives a fresh chat the first query as its name,
// truncated to a readable length.
func (slf *ChatService) RenameFromFirstMessage(chat *models.Chat, nlQuery string) {
	if chat.Name != newChatName {
		return
	}
	name := truncateChatName(nlQuery)
	if err := slf.chatRepo.Rename(chat.ID, name); err != nil {
		slf.logger.Error().Err(err).Str("chatId", chat.ID.String()).Msg("Error renaming chat")
	}
}

// truncateChatName cuts on a rune boundary so a multi-byte first message
// cannot produce an invalid-UTF-8 name.
func truncateChatName(name string) string {
	runes := []rune(name)
	if len(runes) > chatNameMaxLength {
		return string(runes[:chatNameMaxLength])
	}
	return name
}

// OwnedChat loads a chat together with its database and verifies ownership.
func (slf *ChatService) OwnedChat(userID uint, chatID uuid.UUID) (*models.Chat, *models.Database, error) {
	chat, err := slf.chatRepo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	database, err := slf.ownedDatabase(userID, chat.DatabaseID)
	if err != nil {
		return nil, nil, err
	}
	return &chat, database, nil
}

func (slf *ChatService) ownedDatabase(userID uint, databaseID uuid.UUID) (*models.Database, error) {
	database, err := slf.databaseRepo.FindByID(databaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if database.UserID != userID {
		return nil, ErrNotFound
	}
	return &database, nil
}

func chatToResponse(chat models.Chat) response.ChatResponseDTO {
	return response.ChatResponseDTO{
		ID:         chat.ID,
		DatabaseID: chat.DatabaseID,
		Name:       chat.Name,
		CreatedAt:  chat.CreatedAt,
	}
}

func MessageToResponse(message models.ChatMessage) response.MessageResponseDTO {
	generatePlot := message.PlotScript != nil

	return response.MessageResponseDTO{
		ID:               message.ID,
		NlQuery:          message.NlQuery,
		DbQuery:          message.DbQuery,
		GeneratePlot:     generatePlot,
		PlotUrl:          message.PlotUrl,
		DbExecutionError: message.DbExecutionError,
		PlotError:        message.PlotError,
		Timestamp:        message.Timestamp,
	}
}
