package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultChatTitle = "New Chat"

type Chat struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string        `bson:"user_id" json:"user_id"`
	Title     string        `bson:"title" json:"title"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// MessageRole tags who authored a message. Closed set.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is append-only: never edited or reordered after creation.
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID    bson.ObjectID `bson:"chat_id" json:"chat_id"`
	Role      MessageRole   `bson:"role" json:"role"`
	Content   string        `bson:"content" json:"content"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
