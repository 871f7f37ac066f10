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

// CreateSubscriptionIfAbsent inserts the subscription keyed by its Stripe
// subscription ID. If a record with that ID already exists nothing is
// written; the boolean reports whether a new record was created. This makes
// duplicate webhook deliveries harmless.
func (s *Store) CreateSubscriptionIfAbsent(ctx context.Context, sub *models.Subscription) (bool, error) {
	doc := bson.M{
		"user_id":                sub.UserID,
		"stripe_customer_id":     sub.StripeCustomerID,
		"stripe_subscription_id": sub.StripeSubscriptionID,
		"stripe_price_id":        sub.StripePriceID,
		"plan":                   sub.Plan,
		"status":                 sub.Status,
		"current_period_start":   sub.CurrentPeriodStart,
		"current_period_end":     sub.CurrentPeriodEnd,
		"cancel_at_period_end":   sub.CancelAtPeriodEnd,
		"created_at":             sub.CreatedAt,
		"updated_at":             sub.UpdatedAt,
	}

	result, err := s.db.Collection(SubscriptionCollection).UpdateOne(ctx,
		bson.M{"stripe_subscription_id": sub.StripeSubscriptionID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("error creating subscription: %v", err)
	}
	return result.UpsertedCount > 0, nil
}

// GetSubscriptionByUserID returns (nil, nil) when the user has no record.
func (s *Store) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Collection(SubscriptionCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching subscription for user %s: %v", userID, err)
	}
	return &sub, nil
}

func (s *Store) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Collection(SubscriptionCollection).FindOne(ctx, bson.M{"stripe_subscription_id": stripeSubscriptionID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching subscription %s: %v", stripeSubscriptionID, err)
	}
	return &sub, nil
}

// UpdateSubscriptionPeriods applies a subscription-updated event. No-op when
// no record matches the Stripe subscription ID.
func (s *Store) UpdateSubscriptionPeriods(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool, updatedAt time.Time) (bool, error) {
	result, err := s.db.Collection(SubscriptionCollection).UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubscriptionID},
		bson.M{"$set": bson.M{
			"status":               status,
			"current_period_start": periodStart,
			"current_period_end":   periodEnd,
			"cancel_at_period_end": cancelAtPeriodEnd,
			"updated_at":           updatedAt,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("error updating subscription %s: %v", stripeSubscriptionID, err)
	}
	return result.MatchedCount > 0, nil
}

func (s *Store) SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, updatedAt time.Time) (bool, error) {
	result, err := s.db.Collection(SubscriptionCollection).UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubscriptionID},
		bson.M{"$set": bson.M{"status": status, "updated_at": updatedAt}},
	)
	if err != nil {
		return false, fmt.Errorf("error updating subscription status %s: %v", stripeSubscriptionID, err)
	}
	return result.MatchedCount > 0, nil
}

func (s *Store) SetCancelAtPeriodEnd(ctx context.Context, stripeSubscriptionID string, cancel bool, updatedAt time.Time) (bool, error) {
	result, err := s.db.Collection(SubscriptionCollection).UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubscriptionID},
		bson.M{"$set": bson.M{"cancel_at_period_end": cancel, "updated_at": updatedAt}},
	)
	if err != nil {
		return false, fmt.Errorf("error updating cancel flag for subscription %s: %v", stripeSubscriptionID, err)
	}
	return result.MatchedCount > 0, nil
}
