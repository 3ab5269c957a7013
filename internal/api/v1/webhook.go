package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
	"github.com/lettercounsel/lettercounsel/internal/service"
)

const maxWebhookBodyBytes = 1 << 16

type WebhookHandler struct {
	service service.PaymentService
	sentry  *sentry.Service
	log     *logger.Logger
}

func NewWebhookHandler(service service.PaymentService, sentrySvc *sentry.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, sentry: sentrySvc, log: log}
}

// HandleStripeWebhook processes provider deliveries. A bad signature is
// rejected; a verified event is acknowledged with 200 even when processing
// fails, because the idempotency record rolls back with the failed
// transaction and a later delivery of the same event completes the work.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook body").
			Mark(ierr.ErrValidation))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if ierr.IsPermissionDenied(err) || ierr.IsValidation(err) {
			c.Error(err)
			return
		}

		h.log.Errorw("webhook processing failed, acknowledging for retry",
			"error", err,
		)
		h.sentry.CaptureException(c.Request.Context(), err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
