package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/models"
	"github.com/MRaysa/AI-chatbot-server/services"
)

type StripeHandler struct {
	billing *services.BillingService
}

func NewStripeHandler(billing *services.BillingService) *StripeHandler {
	return &StripeHandler{billing: billing}
}

type createCheckoutSessionRequest struct {
	Plan string `json:"plan"`
}

// CreateCheckoutSession opens a Stripe checkout session for a paid plan.
func (h *StripeHandler) CreateCheckoutSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Plan == "" {
		BadRequest(c, "Invalid plan selected")
		return
	}

	session, err := h.billing.CreateCheckoutSession(c.Request.Context(), user.UID, models.Plan(req.Plan))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Checkout session created successfully", gin.H{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// HandleWebhook dispatches a signature-verified Stripe event to the matching
// reconciler. Unhandled event types are acknowledged and skipped.
func (h *StripeHandler) HandleWebhook(c *gin.Context) {
	value, exists := c.Get(middleware.StripeEventKey)
	if !exists {
		BadRequest(c, "Missing webhook event")
		return
	}
	event, ok := value.(stripe.Event)
	if !ok {
		BadRequest(c, "Invalid webhook event")
		return
	}

	var err error
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &session); err == nil {
			err = h.billing.HandleCheckoutCompleted(c.Request.Context(), &session)
		}
	case "customer.subscription.updated":
		var subscription stripe.Subscription
		if err = json.Unmarshal(event.Data.Raw, &subscription); err == nil {
			err = h.billing.HandleSubscriptionUpdated(c.Request.Context(), &subscription)
		}
	case "customer.subscription.deleted":
		var subscription stripe.Subscription
		if err = json.Unmarshal(event.Data.Raw, &subscription); err == nil {
			err = h.billing.HandleSubscriptionDeleted(c.Request.Context(), &subscription)
		}
	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err = json.Unmarshal(event.Data.Raw, &invoice); err == nil {
			err = h.billing.HandlePaymentFailed(c.Request.Context(), &invoice)
		}
	default:
		logger.Get().Info("unhandled webhook event type", zap.String("type", string(event.Type)))
	}

	if err != nil {
		logger.Get().Error("webhook processing failed",
			zap.String("type", string(event.Type)),
			zap.Error(err))
		Internal(c, "Webhook Error: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetSubscription returns the caller's subscription, defaulting to the free
// tier when no record exists.
func (h *StripeHandler) GetSubscription(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	sub, err := h.billing.GetSubscription(c.Request.Context(), user.UID)
	if err != nil {
		Error(c, err)
		return
	}

	if sub.StripeSubscriptionID == "" {
		Success(c, "No active subscription", gin.H{
			"subscription": gin.H{
				"plan":   sub.Plan,
				"status": sub.Status,
			},
		})
		return
	}

	Success(c, "Subscription retrieved successfully", gin.H{
		"subscription": subscriptionJSON(sub),
	})
}

// CancelSubscription schedules cancellation at the end of the current
// billing period.
func (h *StripeHandler) CancelSubscription(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	sub, err := h.billing.CancelSubscription(c.Request.Context(), user.UID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Subscription will be canceled at period end", gin.H{
		"subscription": subscriptionJSON(sub),
	})
}

func subscriptionJSON(sub *models.Subscription) gin.H {
	return gin.H{
		"plan":              sub.Plan,
		"status":            sub.Status,
		"currentPeriodEnd":  sub.CurrentPeriodEnd,
		"cancelAtPeriodEnd": sub.CancelAtPeriodEnd,
	}
}
