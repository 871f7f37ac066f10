package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/MRaysa/AI-chatbot-server/models"
)

func (s *Store) CreateChat(ctx context.Context, chat *models.Chat) error {
	result, err := s.db.Collection(ChatCollection).InsertOne(ctx, chat)
	if err != nil {
		return fmt.Errorf("error creating chat: %v", err)
	}
	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		chat.ID = id
	}
	return nil
}

// GetChatByID fetches a chat only if it is owned by userID. Returns
// (nil, nil) when no such owned chat exists.
func (s *Store) GetChatByID(ctx context.Context, chatID bson.ObjectID, userID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.Collection(ChatCollection).FindOne(ctx, bson.M{"_id": chatID, "user_id": userID}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching chat %s: %v", chatID.Hex(), err)
	}
	return &chat, nil
}

func (s *Store) GetChatsByUserID(ctx context.Context, userID string, limit int64) ([]models.Chat, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.db.Collection(ChatCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching chats: %v", err)
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("error decoding chats: %v", err)
	}
	return chats, nil
}

// UpdateChatTitle sets the title and update timestamp in one write. The
// boolean reports whether an owned chat matched.
func (s *Store) UpdateChatTitle(ctx context.Context, chatID bson.ObjectID, userID, title string, updatedAt time.Time) (bool, error) {
	result, err := s.db.Collection(ChatCollection).UpdateOne(ctx,
		bson.M{"_id": chatID, "user_id": userID},
		bson.M{"$set": bson.M{"title": title, "updated_at": updatedAt}},
	)
	if err != nil {
		return false, fmt.Errorf("error updating chat title: %v", err)
	}
	return result.MatchedCount > 0, nil
}

// TouchChat bumps the chat's update timestamp.
func (s *Store) TouchChat(ctx context.Context, chatID bson.ObjectID, userID string, updatedAt time.Time) error {
	_, err := s.db.Collection(ChatCollection).UpdateOne(ctx,
		bson.M{"_id": chatID, "user_id": userID},
		bson.M{"$set": bson.M{"updated_at": updatedAt}},
	)
	if err != nil {
		return fmt.Errorf("error touching chat: %v", err)
	}
	return nil
}

// DeleteChat removes the chat if owned by userID. Deleting a chat that does
// not exist is not an error.
func (s *Store) DeleteChat(ctx context.Context, chatID bson.ObjectID, userID string) error {
	_, err := s.db.Collection(ChatCollection).DeleteOne(ctx, bson.M{"_id": chatID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("error deleting chat: %v", err)
	}
	return nil
}
