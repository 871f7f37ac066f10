package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/llm"
	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/models"
)

const (
	apologyMessage = "I apologize, but I could not generate a response."
	maxUserChats   = 50
	titleCutoff    = 30
)

// ChatService owns chats and messages and coordinates the model calls.
type ChatService struct {
	chats     ChatStore
	messages  MessageStore
	generator Generator
}

func NewChatService(chats ChatStore, messages MessageStore, generator Generator) *ChatService {
	return &ChatService{chats: chats, messages: messages, generator: generator}
}

func (s *ChatService) CreateChat(ctx context.Context, userID, title string) (*models.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultChatTitle
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetUserChats returns up to 50 chats, most recently updated first.
func (s *ChatService) GetUserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	return s.chats.GetChatsByUserID(ctx, userID, maxUserChats)
}

func (s *ChatService) GetChatByID(ctx context.Context, chatID bson.ObjectID, userID string) (*models.Chat, error) {
	chat, err := s.chats.GetChatByID(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID.Hex())
	}
	return chat, nil
}

// GetChatMessages returns the chat's messages in creation order. The chat
// must be owned by userID.
func (s *ChatService) GetChatMessages(ctx context.Context, chatID bson.ObjectID, userID string) ([]models.Message, error) {
	if _, err := s.GetChatByID(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.messages.GetMessagesByChatID(ctx, chatID)
}

// SendMessageResult carries the entities touched by a send for response
// shaping.
type SendMessageResult struct {
	UserMessage *models.Message
	AIMessage   *models.Message
	Chat        *models.Chat
}

// SendMessage appends the user's turn, generates the assistant's reply, and
// updates chat metadata. If this is the first exchange on the chat a title
// is generated from the message.
func (s *ChatService) SendMessage(ctx context.Context, chatID bson.ObjectID, userID, content string) (*SendMessageResult, error) {
	return s.send(ctx, chatID, userID, content, s.generator.Complete)
}

// SendMessageStream behaves like SendMessage but delivers the assistant's
// reply incrementally through onChunk before persisting it whole.
func (s *ChatService) SendMessageStream(ctx context.Context, chatID bson.ObjectID, userID, content string, onChunk func(chunk string) error) (*SendMessageResult, error) {
	return s.send(ctx, chatID, userID, content, func(ctx context.Context, conversation []llm.Message) (string, error) {
		return s.generator.CompleteStream(ctx, conversation, onChunk)
	})
}

func (s *ChatService) send(ctx context.Context, chatID bson.ObjectID, userID, content string, complete func(context.Context, []llm.Message) (string, error)) (*SendMessageResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	chat, err := s.GetChatByID(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMessage := &models.Message{
		ChatID:    chatID,
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.messages.CreateMessage(ctx, userMessage); err != nil {
		return nil, err
	}

	history, err := s.messages.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	// Build the model context from all turns before this one. The new turn
	// is excluded by message identity and appended exactly once, so a
	// history read that already contains it cannot duplicate it.
	conversation := make([]llm.Message, 0, len(history)+1)
	priorTurns := 0
	for _, msg := range history {
		if msg.ID == userMessage.ID {
			continue
		}
		priorTurns++
		conversation = append(conversation, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	conversation = append(conversation, llm.Message{Role: string(models.RoleUser), Content: content})

	// The user turn above stays persisted if this fails; a retried send
	// duplicates the user turn but never the assistant turn.
	reply, err := complete(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = apologyMessage
	}

	aiMessage := &models.Message{
		ChatID:    chatID,
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.CreateMessage(ctx, aiMessage); err != nil {
		return nil, err
	}

	updatedAt := time.Now().UTC()
	if priorTurns == 0 {
		title := s.titleFor(ctx, content)
		if _, err := s.chats.UpdateChatTitle(ctx, chatID, userID, title, updatedAt); err != nil {
			return nil, err
		}
		chat.Title = title
	} else {
		if err := s.chats.TouchChat(ctx, chatID, userID, updatedAt); err != nil {
			return nil, err
		}
	}
	chat.UpdatedAt = updatedAt

	return &SendMessageResult{
		UserMessage: userMessage,
		AIMessage:   aiMessage,
		Chat:        chat,
	}, nil
}

// titleFor generates a chat title from the first message, falling back to a
// truncation of the message itself when the title call fails.
func (s *ChatService) titleFor(ctx context.Context, firstMessage string) string {
	title, err := s.generator.GenerateChatTitle(ctx, firstMessage)
	if err != nil || strings.TrimSpace(title) == "" {
		if err != nil {
			logger.Get().Warn("title generation failed", zap.Error(err))
		}
		runes := []rune(firstMessage)
		if len(runes) > titleCutoff {
			runes = runes[:titleCutoff]
		}
		return string(runes) + "..."
	}
	return strings.TrimSpace(title)
}

// UpdateChatTitle renames an owned chat.
func (s *ChatService) UpdateChatTitle(ctx context.Context, chatID bson.ObjectID, userID, title string) (*models.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	matched, err := s.chats.UpdateChatTitle(ctx, chatID, userID, title, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID.Hex())
	}
	return s.GetChatByID(ctx, chatID, userID)
}

// DeleteChat removes an owned chat and all its messages. Deleting a chat
// that does not exist, or is owned by someone else, is a silent no-op.
func (s *ChatService) DeleteChat(ctx context.Context, chatID bson.ObjectID, userID string) error {
	chat, err := s.chats.GetChatByID(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if chat == nil {
		return nil
	}

	if err := s.chats.DeleteChat(ctx, chatID, userID); err != nil {
		return err
	}
	return s.messages.DeleteMessagesByChatID(ctx, chatID)
}
