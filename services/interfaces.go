package services

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/MRaysa/AI-chatbot-server/llm"
	"github.com/MRaysa/AI-chatbot-server/models"
)

// Store interfaces implemented by *mongodb.Store. Absent records are
// reported as (nil, nil), not as errors.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ReplaceUser(ctx context.Context, user *models.User) error
	SetStripeCustomerID(ctx context.Context, uid, customerID string) error
	SetUserBilling(ctx context.Context, uid string, plan models.Plan, status models.SubscriptionStatus) error
}

type ChatStore interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChatByID(ctx context.Context, chatID bson.ObjectID, userID string) (*models.Chat, error)
	GetChatsByUserID(ctx context.Context, userID string, limit int64) ([]models.Chat, error)
	UpdateChatTitle(ctx context.Context, chatID bson.ObjectID, userID, title string, updatedAt time.Time) (bool, error)
	TouchChat(ctx context.Context, chatID bson.ObjectID, userID string, updatedAt time.Time) error
	DeleteChat(ctx context.Context, chatID bson.ObjectID, userID string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessagesByChatID(ctx context.Context, chatID bson.ObjectID) ([]models.Message, error)
	DeleteMessagesByChatID(ctx context.Context, chatID bson.ObjectID) error
}

type SubscriptionStore interface {
	CreateSubscriptionIfAbsent(ctx context.Context, sub *models.Subscription) (bool, error)
	GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	UpdateSubscriptionPeriods(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool, updatedAt time.Time) (bool, error)
	SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, updatedAt time.Time) (bool, error)
	SetCancelAtPeriodEnd(ctx context.Context, stripeSubscriptionID string, cancel bool, updatedAt time.Time) (bool, error)
}

// IdentityVerifier validates a bearer credential with the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
}

// Generator produces assistant turns from an ordered conversation.
type Generator interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	CompleteStream(ctx context.Context, messages []llm.Message, onChunk func(chunk string) error) (string, error)
	GenerateChatTitle(ctx context.Context, firstMessage string) (string, error)
}

// CheckoutSession is the redirect target returned by the payment provider.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Ledger is the payment provider surface the billing service depends on.
type Ledger interface {
	CreateCustomer(ctx context.Context, email, uid string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, uid string, plan models.Plan, details models.PlanDetails) (*CheckoutSession, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
}
