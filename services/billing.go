package services

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/models"
)

// BillingService keeps the local subscription mirror in sync with Stripe and
// opens checkout sessions for paid plans.
type BillingService struct {
	users  UserStore
	subs   SubscriptionStore
	ledger Ledger
}

func NewBillingService(users UserStore, subs SubscriptionStore, ledger Ledger) *BillingService {
	return &BillingService{users: users, subs: subs, ledger: ledger}
}

// CreateCheckoutSession opens a Stripe checkout session for one of the paid
// tiers, lazily creating the Stripe customer on first checkout.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, uid string, plan models.Plan) (*CheckoutSession, error) {
	details, ok := models.PaidPlans[plan]
	if !ok {
		return nil, fmt.Errorf("%w: invalid plan %q", ErrInvalidInput, plan)
	}

	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, uid)
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.ledger.CreateCustomer(ctx, user.Email, uid)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if err := s.users.SetStripeCustomerID(ctx, uid, customerID); err != nil {
			return nil, err
		}
		logger.Get().Info("created stripe customer", zap.String("uid", uid), zap.String("customer_id", customerID))
	}

	session, err := s.ledger.CreateCheckoutSession(ctx, customerID, uid, plan, details)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return session, nil
}

// GetSubscription returns the user's subscription, or the implicit free tier
// when no record exists.
func (s *BillingService) GetSubscription(ctx context.Context, uid string) (*models.Subscription, error) {
	sub, err := s.subs.GetSubscriptionByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &models.Subscription{
			UserID: uid,
			Plan:   models.PlanFree,
			Status: models.SubscriptionStatusActive,
		}, nil
	}
	return sub, nil
}

// CancelSubscription requests cancellation at the end of the current billing
// period. The subscription status is untouched; the canceled status arrives
// later through the deletion webhook.
func (s *BillingService) CancelSubscription(ctx context.Context, uid string) (*models.Subscription, error) {
	sub, err := s.subs.GetSubscriptionByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: no active subscription for user %s", ErrNotFound, uid)
	}

	if err := s.ledger.CancelAtPeriodEnd(ctx, sub.StripeSubscriptionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := s.subs.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, true, time.Now().UTC()); err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	return sub, nil
}

// HandleCheckoutCompleted creates the local subscription record from the
// remote subscription's current state. Duplicate deliveries are ignored.
func (s *BillingService) HandleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	uid := session.Metadata["userId"]
	plan := session.Metadata["plan"]
	if uid == "" || session.Subscription == nil {
		logger.Get().Warn("checkout session missing user or subscription", zap.String("session_id", session.ID))
		return nil
	}

	remote, err := s.ledger.RetrieveSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	periodStart, periodEnd := subscriptionPeriod(remote)
	now := time.Now().UTC()
	sub := &models.Subscription{
		UserID:               uid,
		StripeSubscriptionID: remote.ID,
		Plan:                 models.Plan(plan),
		Status:               models.SubscriptionStatus(remote.Status),
		CurrentPeriodStart:   periodStart,
		CurrentPeriodEnd:     periodEnd,
		CancelAtPeriodEnd:    remote.CancelAtPeriodEnd,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if session.Customer != nil {
		sub.StripeCustomerID = session.Customer.ID
	}
	if remote.Items != nil && len(remote.Items.Data) > 0 && remote.Items.Data[0].Price != nil {
		sub.StripePriceID = remote.Items.Data[0].Price.ID
	}

	created, err := s.subs.CreateSubscriptionIfAbsent(ctx, sub)
	if err != nil {
		return err
	}
	if !created {
		logger.Get().Info("subscription already recorded, skipping duplicate checkout event",
			zap.String("stripe_subscription_id", remote.ID))
		return nil
	}

	logger.Get().Info("subscription created",
		zap.String("uid", uid),
		zap.String("plan", plan),
		zap.String("stripe_subscription_id", remote.ID))
	return s.users.SetUserBilling(ctx, uid, sub.Plan, sub.Status)
}

// HandleSubscriptionUpdated mirrors status, period bounds, and the cancel
// flag. Events for unknown subscriptions are no-ops.
func (s *BillingService) HandleSubscriptionUpdated(ctx context.Context, remote *stripe.Subscription) error {
	periodStart, periodEnd := subscriptionPeriod(remote)
	matched, err := s.subs.UpdateSubscriptionPeriods(ctx, remote.ID,
		models.SubscriptionStatus(remote.Status), periodStart, periodEnd, remote.CancelAtPeriodEnd, time.Now().UTC())
	if err != nil {
		return err
	}
	if !matched {
		logger.Get().Warn("update event for unknown subscription", zap.String("stripe_subscription_id", remote.ID))
		return nil
	}

	local, err := s.subs.GetSubscriptionByStripeID(ctx, remote.ID)
	if err != nil || local == nil {
		return err
	}
	return s.users.SetUserBilling(ctx, local.UserID, local.Plan, local.Status)
}

// HandleSubscriptionDeleted marks the local record canceled and drops the
// user back to the free tier. Events for unknown subscriptions are no-ops.
func (s *BillingService) HandleSubscriptionDeleted(ctx context.Context, remote *stripe.Subscription) error {
	matched, err := s.subs.SetSubscriptionStatus(ctx, remote.ID, models.SubscriptionStatusCanceled, time.Now().UTC())
	if err != nil {
		return err
	}
	if !matched {
		logger.Get().Warn("delete event for unknown subscription", zap.String("stripe_subscription_id", remote.ID))
		return nil
	}

	local, err := s.subs.GetSubscriptionByStripeID(ctx, remote.ID)
	if err != nil || local == nil {
		return err
	}
	return s.users.SetUserBilling(ctx, local.UserID, models.PlanFree, models.SubscriptionStatusCanceled)
}

// HandlePaymentFailed marks the referenced subscription past due. Invoices
// without a subscription reference are ignored.
func (s *BillingService) HandlePaymentFailed(ctx context.Context, invoice *stripe.Invoice) error {
	subscriptionID := invoiceSubscriptionID(invoice)
	if subscriptionID == "" {
		return nil
	}

	matched, err := s.subs.SetSubscriptionStatus(ctx, subscriptionID, models.SubscriptionStatusPastDue, time.Now().UTC())
	if err != nil {
		return err
	}
	if !matched {
		return nil
	}

	logger.Get().Warn("payment failed", zap.String("stripe_subscription_id", subscriptionID))
	local, err := s.subs.GetSubscriptionByStripeID(ctx, subscriptionID)
	if err != nil || local == nil {
		return err
	}
	return s.users.SetUserBilling(ctx, local.UserID, local.Plan, models.SubscriptionStatusPastDue)
}

func subscriptionPeriod(sub *stripe.Subscription) (time.Time, time.Time) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}, time.Time{}
	}
	item := sub.Items.Data[0]
	return time.Unix(item.CurrentPeriodStart, 0).UTC(), time.Unix(item.CurrentPeriodEnd, 0).UTC()
}

func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice.Parent == nil || invoice.Parent.SubscriptionDetails == nil || invoice.Parent.SubscriptionDetails.Subscription == nil {
		return ""
	}
	return invoice.Parent.SubscriptionDetails.Subscription.ID
}
