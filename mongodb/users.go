package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/MRaysa/AI-chatbot-server/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.Collection(UserCollection).InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("error creating user: %v", err)
	}
	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// GetUserByUID returns (nil, nil) when no user exists for the uid.
func (s *Store) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(UserCollection).FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user %s: %v", uid, err)
	}
	return &user, nil
}

// ReplaceUser writes a fully computed user snapshot back, keyed by uid.
func (s *Store) ReplaceUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(UserCollection).ReplaceOne(ctx, bson.M{"uid": user.UID}, user)
	if err != nil {
		return fmt.Errorf("error replacing user %s: %v", user.UID, err)
	}
	return nil
}

func (s *Store) SetStripeCustomerID(ctx context.Context, uid, customerID string) error {
	_, err := s.db.Collection(UserCollection).UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"stripe_customer_id": customerID}},
	)
	if err != nil {
		return fmt.Errorf("error updating stripe customer ID for user %s: %v", uid, err)
	}
	return nil
}

// SetUserBilling mirrors the subscription plan and status onto the user record.
func (s *Store) SetUserBilling(ctx context.Context, uid string, plan models.Plan, status models.SubscriptionStatus) error {
	_, err := s.db.Collection(UserCollection).UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"plan": plan, "subscription_status": status}},
	)
	if err != nil {
		return fmt.Errorf("error updating billing fields for user %s: %v", uid, err)
	}
	return nil
}
