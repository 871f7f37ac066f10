package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/logger"
)

const StripeEventKey = "stripe_event"

// StripeWebhookVerifier reads the raw body, verifies the Stripe signature,
// and stores the constructed event in the gin context. Requests with bad
// signatures never reach the handler.
func StripeWebhookVerifier(webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Get().Error("failed to read webhook body", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Unable to read request body",
			})
			return
		}

		event, err := webhook.ConstructEvent(b, c.Request.Header.Get("Stripe-Signature"), webhookSecret)
		if err != nil {
			logger.Get().Error("webhook signature verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Webhook signature verification failed",
			})
			return
		}

		c.Set(StripeEventKey, event)
		c.Next()
	}
}
