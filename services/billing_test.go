package services

import (
	"context"
	"errors"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRaysa/AI-chatbot-server/models"
)

func remoteSubscription(id string, status stripe.SubscriptionStatus, start, end int64) *stripe.Subscription {
	return &stripe.Subscription{
		ID:     id,
		Status: status,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				CurrentPeriodStart: start,
				CurrentPeriodEnd:   end,
				Price:              &stripe.Price{ID: "price_123"},
			}},
		},
	}
}

func TestCreateCheckoutSession_LazilyCreatesCustomer(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{
		UID:   "uid-1",
		Email: "alice@example.com",
	}))
	ledger := &fakeLedger{
		customerID: "cus_123",
		session:    &CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/cs_123"},
	}
	svc := NewBillingService(users, newFakeSubscriptionStore(), ledger)

	session, err := svc.CreateCheckoutSession(context.Background(), "uid-1", models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, []string{"uid-1"}, ledger.createdCustomers)

	user, err := users.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", user.StripeCustomerID)

	// Second checkout reuses the stored customer.
	_, err = svc.CreateCheckoutSession(context.Background(), "uid-1", models.PlanTeam)
	require.NoError(t, err)
	assert.Len(t, ledger.createdCustomers, 1)
}

func TestCreateCheckoutSession_RejectsUnknownPlan(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	_, err := svc.CreateCheckoutSession(context.Background(), "uid-1", models.PlanFree)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateCheckoutSession(context.Background(), "uid-1", models.Plan("enterprise"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateCheckoutSession_UnknownUser(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	_, err := svc.CreateCheckoutSession(context.Background(), "missing", models.PlanPro)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCheckoutSession_LedgerFailure(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1", StripeCustomerID: "cus_123"}))
	ledger := &fakeLedger{sessionErr: errors.New("stripe down")}
	svc := NewBillingService(users, newFakeSubscriptionStore(), ledger)

	_, err := svc.CreateCheckoutSession(context.Background(), "uid-1", models.PlanPro)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGetSubscription_ImplicitFreeTier(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	sub, err := svc.GetSubscription(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Empty(t, sub.StripeSubscriptionID)
}

func TestCancelSubscription(t *testing.T) {
	subs := newFakeSubscriptionStore()
	_, err := subs.CreateSubscriptionIfAbsent(context.Background(), &models.Subscription{
		UserID:               "uid-1",
		StripeSubscriptionID: "sub_123",
		Plan:                 models.PlanPro,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	ledger := &fakeLedger{}
	svc := NewBillingService(newFakeUserStore(), subs, ledger)

	sub, err := svc.CancelSubscription(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	// Status only flips when the deletion webhook lands.
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, []string{"sub_123"}, ledger.canceled)
}

func TestCancelSubscription_NoSubscription(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	_, err := svc.CancelSubscription(context.Background(), "uid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandleCheckoutCompleted_CreatesMirror(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1", Plan: models.PlanFree}))
	subs := newFakeSubscriptionStore()
	start := time.Now().UTC().Truncate(time.Second)
	end := start.Add(30 * 24 * time.Hour)
	ledger := &fakeLedger{remote: remoteSubscription("sub_123", stripe.SubscriptionStatusActive, start.Unix(), end.Unix())}
	svc := NewBillingService(users, subs, ledger)

	session := &stripe.CheckoutSession{
		ID:           "cs_123",
		Metadata:     map[string]string{"userId": "uid-1", "plan": "pro"},
		Subscription: &stripe.Subscription{ID: "sub_123"},
		Customer:     &stripe.Customer{ID: "cus_123"},
	}
	require.NoError(t, svc.HandleCheckoutCompleted(context.Background(), session))

	sub, err := subs.GetSubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "uid-1", sub.UserID)
	assert.Equal(t, models.PlanPro, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)
	assert.Equal(t, "price_123", sub.StripePriceID)
	assert.Equal(t, start, sub.CurrentPeriodStart)
	assert.Equal(t, end, sub.CurrentPeriodEnd)

	user, err := users.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, user.SubscriptionStatus)
}

func TestHandleCheckoutCompleted_DuplicateDelivery(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1"}))
	subs := newFakeSubscriptionStore()
	ledger := &fakeLedger{remote: remoteSubscription("sub_123", stripe.SubscriptionStatusActive, 1000, 2000)}
	svc := NewBillingService(users, subs, ledger)

	session := &stripe.CheckoutSession{
		ID:           "cs_123",
		Metadata:     map[string]string{"userId": "uid-1", "plan": "pro"},
		Subscription: &stripe.Subscription{ID: "sub_123"},
	}
	require.NoError(t, svc.HandleCheckoutCompleted(context.Background(), session))
	require.NoError(t, svc.HandleCheckoutCompleted(context.Background(), session))

	assert.Len(t, subs.subs, 1)
}

func TestHandleCheckoutCompleted_MissingMetadata(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{retrieveErr: errors.New("should not be called")})

	// No user id and no subscription reference: acknowledged, not an error.
	assert.NoError(t, svc.HandleCheckoutCompleted(context.Background(), &stripe.CheckoutSession{ID: "cs_123"}))
}

func TestHandleSubscriptionUpdated(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1", Plan: models.PlanPro}))
	subs := newFakeSubscriptionStore()
	_, err := subs.CreateSubscriptionIfAbsent(context.Background(), &models.Subscription{
		UserID:               "uid-1",
		StripeSubscriptionID: "sub_123",
		Plan:                 models.PlanPro,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	svc := NewBillingService(users, subs, &fakeLedger{})

	remote := remoteSubscription("sub_123", stripe.SubscriptionStatusPastDue, 3000, 4000)
	remote.CancelAtPeriodEnd = true
	require.NoError(t, svc.HandleSubscriptionUpdated(context.Background(), remote))

	sub, err := subs.GetSubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPastDue, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, time.Unix(3000, 0).UTC(), sub.CurrentPeriodStart)

	user, err := users.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPastDue, user.SubscriptionStatus)
	assert.Equal(t, models.PlanPro, user.Plan)
}

func TestHandleSubscriptionUpdated_UnknownSubscription(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	remote := remoteSubscription("sub_unknown", stripe.SubscriptionStatusActive, 0, 0)
	assert.NoError(t, svc.HandleSubscriptionUpdated(context.Background(), remote))
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1", Plan: models.PlanPro}))
	subs := newFakeSubscriptionStore()
	_, err := subs.CreateSubscriptionIfAbsent(context.Background(), &models.Subscription{
		UserID:               "uid-1",
		StripeSubscriptionID: "sub_123",
		Plan:                 models.PlanPro,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	svc := NewBillingService(users, subs, &fakeLedger{})

	require.NoError(t, svc.HandleSubscriptionDeleted(context.Background(), &stripe.Subscription{ID: "sub_123"}))

	sub, err := subs.GetSubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)

	user, err := users.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Equal(t, models.SubscriptionStatusCanceled, user.SubscriptionStatus)
}

func TestHandlePaymentFailed(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{UID: "uid-1", Plan: models.PlanPro}))
	subs := newFakeSubscriptionStore()
	_, err := subs.CreateSubscriptionIfAbsent(context.Background(), &models.Subscription{
		UserID:               "uid-1",
		StripeSubscriptionID: "sub_123",
		Plan:                 models.PlanPro,
		Status:               models.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	svc := NewBillingService(users, subs, &fakeLedger{})

	invoice := &stripe.Invoice{
		Parent: &stripe.InvoiceParent{
			SubscriptionDetails: &stripe.InvoiceParentSubscriptionDetails{
				Subscription: &stripe.Subscription{ID: "sub_123"},
			},
		},
	}
	require.NoError(t, svc.HandlePaymentFailed(context.Background(), invoice))

	sub, err := subs.GetSubscriptionByStripeID(context.Background(), "sub_123")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPastDue, sub.Status)

	// The user keeps the paid plan while past due.
	user, err := users.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.Equal(t, models.SubscriptionStatusPastDue, user.SubscriptionStatus)
}

func TestHandlePaymentFailed_NoSubscriptionReference(t *testing.T) {
	svc := NewBillingService(newFakeUserStore(), newFakeSubscriptionStore(), &fakeLedger{})

	assert.NoError(t, svc.HandlePaymentFailed(context.Background(), &stripe.Invoice{}))
	assert.NoError(t, svc.HandlePaymentFailed(context.Background(), &stripe.Invoice{Parent: &stripe.InvoiceParent{}}))
}
