package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthProvider identifies which identity provider signed the user in.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

type User struct {
	ID                 bson.ObjectID      `bson:"_id,omitempty" json:"-"`
	UID                string             `bson:"uid" json:"uid"`
	Email              string             `bson:"email" json:"email"`
	DisplayName        string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	PhotoURL           string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Provider           AuthProvider       `bson:"provider" json:"provider"`
	StripeCustomerID   string             `bson:"stripe_customer_id,omitempty" json:"-"`
	Plan               Plan               `bson:"plan" json:"plan"`
	SubscriptionStatus SubscriptionStatus `bson:"subscription_status,omitempty" json:"subscription_status,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
	LastLoginAt        time.Time          `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// Identity is the verified result returned by the identity provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Provider    AuthProvider
}
