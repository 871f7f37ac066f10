package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/MRaysa/AI-chatbot-server/models"
)

func (s *Store) CreateMessage(ctx context.Context, message *models.Message) error {
	result, err := s.db.Collection(MessageCollection).InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("error creating message: %v", err)
	}
	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		message.ID = id
	}
	return nil
}

func (s *Store) GetMessagesByChatID(ctx context.Context, chatID bson.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.db.Collection(MessageCollection).Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching messages: %v", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	for cursor.Next(ctx) {
		var message models.Message
		if err := cursor.Decode(&message); err != nil {
			return nil, fmt.Errorf("error decoding message: %v", err)
		}
		messages = append(messages, message)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return messages, nil
}

func (s *Store) DeleteMessagesByChatID(ctx context.Context, chatID bson.ObjectID) error {
	_, err := s.db.Collection(MessageCollection).DeleteMany(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return fmt.Errorf("error deleting messages: %v", err)
	}
	return nil
}
