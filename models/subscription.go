package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanTeam Plan = "team"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
)

// Subscription mirrors the Stripe subscription for a user. At most one local
// record exists per Stripe subscription ID.
type Subscription struct {
	ID                   bson.ObjectID      `bson:"_id,omitempty" json:"-"`
	UserID               string             `bson:"user_id" json:"user_id"`
	StripeCustomerID     string             `bson:"stripe_customer_id" json:"-"`
	StripeSubscriptionID string             `bson:"stripe_subscription_id" json:"-"`
	StripePriceID        string             `bson:"stripe_price_id" json:"-"`
	Plan                 Plan               `bson:"plan" json:"plan"`
	Status               SubscriptionStatus `bson:"status" json:"status"`
	CurrentPeriodStart   time.Time          `bson:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd     time.Time          `bson:"current_period_end" json:"current_period_end"`
	CancelAtPeriodEnd    bool               `bson:"cancel_at_period_end" json:"cancel_at_period_end"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}
