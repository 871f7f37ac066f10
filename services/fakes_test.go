package services

import (
	"context"
	"errors"
	"sort"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/MRaysa/AI-chatbot-server/llm"
	"github.com/MRaysa/AI-chatbot-server/models"
)

// In-memory store fakes mirroring the mongodb package's contract: absent
// records come back as (nil, nil).

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = bson.NewObjectID()
	clone := *user
	f.users[user.UID] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	user, ok := f.users[uid]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) ReplaceUser(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.UID]; !ok {
		return errors.New("no such user")
	}
	clone := *user
	f.users[user.UID] = &clone
	return nil
}

func (f *fakeUserStore) SetStripeCustomerID(ctx context.Context, uid, customerID string) error {
	user, ok := f.users[uid]
	if !ok {
		return errors.New("no such user")
	}
	user.StripeCustomerID = customerID
	return nil
}

func (f *fakeUserStore) SetUserBilling(ctx context.Context, uid string, plan models.Plan, status models.SubscriptionStatus) error {
	user, ok := f.users[uid]
	if !ok {
		return errors.New("no such user")
	}
	user.Plan = plan
	user.SubscriptionStatus = status
	return nil
}

type fakeChatStore struct {
	chats map[bson.ObjectID]*models.Chat
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[bson.ObjectID]*models.Chat)}
}

func (f *fakeChatStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	chat.ID = bson.NewObjectID()
	clone := *chat
	f.chats[chat.ID] = &clone
	return nil
}

func (f *fakeChatStore) GetChatByID(ctx context.Context, chatID bson.ObjectID, userID string) (*models.Chat, error) {
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return nil, nil
	}
	clone := *chat
	return &clone, nil
}

func (f *fakeChatStore) GetChatsByUserID(ctx context.Context, userID string, limit int64) ([]models.Chat, error) {
	var out []models.Chat
	for _, chat := range f.chats {
		if chat.UserID == userID {
			out = append(out, *chat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeChatStore) UpdateChatTitle(ctx context.Context, chatID bson.ObjectID, userID, title string, updatedAt time.Time) (bool, error) {
	chat, ok := f.chats[chatID]
	if !ok || chat.UserID != userID {
		return false, nil
	}
	chat.Title = title
	chat.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeChatStore) TouchChat(ctx context.Context, chatID bson.ObjectID, userID string, updatedAt time.Time) error {
	if chat, ok := f.chats[chatID]; ok && chat.UserID == userID {
		chat.UpdatedAt = updatedAt
	}
	return nil
}

func (f *fakeChatStore) DeleteChat(ctx context.Context, chatID bson.ObjectID, userID string) error {
	if chat, ok := f.chats[chatID]; ok && chat.UserID == userID {
		delete(f.chats, chatID)
	}
	return nil
}

type fakeMessageStore struct {
	messages []models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = bson.NewObjectID()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) GetMessagesByChatID(ctx context.Context, chatID bson.ObjectID) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range f.messages {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteMessagesByChatID(ctx context.Context, chatID bson.ObjectID) error {
	kept := f.messages[:0]
	for _, msg := range f.messages {
		if msg.ChatID != chatID {
			kept = append(kept, msg)
		}
	}
	f.messages = kept
	return nil
}

type fakeSubscriptionStore struct {
	subs map[string]*models.Subscription // keyed by stripe subscription id
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]*models.Subscription)}
}

func (f *fakeSubscriptionStore) CreateSubscriptionIfAbsent(ctx context.Context, sub *models.Subscription) (bool, error) {
	if _, ok := f.subs[sub.StripeSubscriptionID]; ok {
		return false, nil
	}
	sub.ID = bson.NewObjectID()
	clone := *sub
	f.subs[sub.StripeSubscriptionID] = &clone
	return true, nil
}

func (f *fakeSubscriptionStore) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.UserID == userID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptionStore) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	sub, ok := f.subs[stripeSubscriptionID]
	if !ok {
		return nil, nil
	}
	clone := *sub
	return &clone, nil
}

func (f *fakeSubscriptionStore) UpdateSubscriptionPeriods(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool, updatedAt time.Time) (bool, error) {
	sub, ok := f.subs[stripeSubscriptionID]
	if !ok {
		return false, nil
	}
	sub.Status = status
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd
	sub.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeSubscriptionStore) SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, updatedAt time.Time) (bool, error) {
	sub, ok := f.subs[stripeSubscriptionID]
	if !ok {
		return false, nil
	}
	sub.Status = status
	sub.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeSubscriptionStore) SetCancelAtPeriodEnd(ctx context.Context, stripeSubscriptionID string, cancel bool, updatedAt time.Time) (bool, error) {
	sub, ok := f.subs[stripeSubscriptionID]
	if !ok {
		return false, nil
	}
	sub.CancelAtPeriodEnd = cancel
	sub.UpdatedAt = updatedAt
	return true, nil
}

type fakeVerifier struct {
	identity *models.Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeGenerator struct {
	reply      string
	title      string
	chunks     []string
	replyErr   error
	titleErr   error
	completed  [][]llm.Message
	titleCalls []string
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.completed = append(f.completed, messages)
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeGenerator) CompleteStream(ctx context.Context, messages []llm.Message, onChunk func(chunk string) error) (string, error) {
	f.completed = append(f.completed, messages)
	if f.replyErr != nil {
		return "", f.replyErr
	}
	var full string
	for _, chunk := range f.chunks {
		if err := onChunk(chunk); err != nil {
			return full, err
		}
		full += chunk
	}
	return full, nil
}

func (f *fakeGenerator) GenerateChatTitle(ctx context.Context, firstMessage string) (string, error) {
	f.titleCalls = append(f.titleCalls, firstMessage)
	if f.titleErr != nil {
		return "", f.titleErr
	}
	return f.title, nil
}

type fakeLedger struct {
	customerID  string
	session     *CheckoutSession
	remote      *stripe.Subscription
	customerErr error
	sessionErr  error
	retrieveErr error
	cancelErr   error

	createdCustomers []string
	canceled         []string
}

func (f *fakeLedger) CreateCustomer(ctx context.Context, email, uid string) (string, error) {
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.createdCustomers = append(f.createdCustomers, uid)
	return f.customerID, nil
}

func (f *fakeLedger) CreateCheckoutSession(ctx context.Context, customerID, uid string, plan models.Plan, details models.PlanDetails) (*CheckoutSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeLedger) RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.remote, nil
}

func (f *fakeLedger) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.canceled = append(f.canceled, subscriptionID)
	return nil
}
