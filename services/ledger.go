package services

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"

	"github.com/MRaysa/AI-chatbot-server/models"
)

// StripeLedger implements Ledger against the Stripe API.
type StripeLedger struct {
	successURL string
	cancelURL  string
}

// NewStripeLedger sets the global Stripe API key and derives checkout
// redirect URLs from the client origin.
func NewStripeLedger(apiKey, clientURL string) *StripeLedger {
	stripe.Key = apiKey
	clientURL = strings.TrimRight(clientURL, "/")
	return &StripeLedger{
		successURL: clientURL + "/chat?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  clientURL + "/chat",
	}
}

func (l *StripeLedger) CreateCustomer(ctx context.Context, email, uid string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	params.AddMetadata("userId", uid)

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("error creating stripe customer: %v", err)
	}
	return c.ID, nil
}

func (l *StripeLedger) CreateCheckoutSession(ctx context.Context, customerID, uid string, plan models.Plan, details models.PlanDetails) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:         stripe.String(l.successURL),
		CancelURL:          stripe.String(l.cancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(details.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(details.Name + " Plan"),
						Description: stripe.String(fmt.Sprintf("%s subscription - %s", details.Name, strings.Join(details.Features, ", "))),
					},
					UnitAmount: stripe.Int64(details.Price),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(details.Interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("userId", uid)
	params.AddMetadata("plan", string(plan))

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("error creating checkout session: %v", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (l *StripeLedger) RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, err := subscription.Get(subscriptionID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving subscription %s: %v", subscriptionID, err)
	}
	return sub, nil
}

func (l *StripeLedger) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	_, err := subscription.Update(subscriptionID, &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: ctx},
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("error canceling subscription %s: %v", subscriptionID, err)
	}
	return nil
}
