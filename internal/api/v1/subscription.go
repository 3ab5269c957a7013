package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/api/dto"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/service"
)

type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list plans", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPlansResponse{Items: plans})
}

func (h *SubscriptionHandler) GetCurrentState(c *gin.Context) {
	state, err := h.service.GetCurrentState(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get subscription state", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SubscriptionStateResponse{
		Subscription:       dto.NewSubscriptionResponse(state.Subscription),
		FreeTrialAvailable: state.FreeTrialAvailable,
		Eligible:           state.Eligible,
	})
}

func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), service.CreateCheckoutRequest{
		PlanType:   req.PlanType,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.log.Error("Failed to create checkout", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		URL:             result.URL,
		SessionID:       result.SessionID,
		Subscription:    dto.NewSubscriptionResponse(result.Subscription),
		Completed:       result.Completed,
		FinalPrice:      result.FinalPrice,
		DiscountApplied: result.DiscountApplied,
	})
}

// CreateFreeCheckout only accepts checkouts that complete immediately,
// meaning the coupon covers the full plan price.
func (h *SubscriptionHandler) CreateFreeCheckout(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}
	if req.CouponCode == "" {
		c.Error(ierr.NewError("coupon code is required").
			WithHint("Free checkout requires a full discount coupon").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), service.CreateCheckoutRequest{
		PlanType:   req.PlanType,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.log.Error("Failed to create free checkout", "error", err)
		c.Error(err)
		return
	}
	if !result.Completed {
		c.Error(ierr.NewError("coupon does not cover the plan price").
			WithHint("Use the standard checkout for partial discounts").
			Mark(ierr.ErrValidation))
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Subscription:    dto.NewSubscriptionResponse(result.Subscription),
		Completed:       true,
		FinalPrice:      result.FinalPrice,
		DiscountApplied: true,
	})
}
