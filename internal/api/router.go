package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/lettercounsel/lettercounsel/internal/api/v1"
	"github.com/lettercounsel/lettercounsel/internal/auth"
	"github.com/lettercounsel/lettercounsel/internal/config"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/rest/middleware"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health       *v1.HealthHandler
	Letter       *v1.LetterHandler
	Review       *v1.ReviewHandler
	Audit        *v1.AuditHandler
	Subscription *v1.SubscriptionHandler
	Commission   *v1.CommissionHandler
	Webhook      *v1.WebhookHandler
}

// NewRouter wires middleware and routes. Webhooks and health stay outside
// the auth boundary; everything else requires a validated token.
func NewRouter(cfg *config.Configuration, handlers Handlers, provider auth.Provider, sentrySvc *sentry.Service, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.RunModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		sentrySvc.GinMiddleware(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)

	root := router.Group("/api/v1")
	root.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)

	authed := root.Group("")
	authed.Use(middleware.AuthMiddleware(provider, log))
	{
		letters := authed.Group("/letters")
		{
			letters.POST("", handlers.Letter.GenerateLetter)
			letters.GET("", handlers.Letter.ListLetters)
			letters.GET("/:id", handlers.Letter.GetLetter)
			letters.DELETE("/:id", handlers.Letter.DeleteLetter)
			letters.POST("/:id/resubmit", handlers.Letter.ResubmitLetter)
			letters.POST("/:id/retry", handlers.Letter.RetryLetter)
			letters.GET("/:id/audit", handlers.Audit.GetAuditTrail)
		}

		subscription := authed.Group("/subscription")
		{
			subscription.GET("", handlers.Subscription.GetCurrentState)
			subscription.GET("/plans", handlers.Subscription.ListPlans)
			subscription.POST("/checkout", handlers.Subscription.CreateCheckout)
			subscription.POST("/free-checkout", handlers.Subscription.CreateFreeCheckout)
		}

		commissions := authed.Group("/commissions")
		commissions.Use(middleware.RequireCapability(types.CapabilityViewCommissions))
		{
			commissions.GET("", handlers.Commission.ListMyCommissions)
		}

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireCapability(types.CapabilityReviewLetters))
		{
			admin.GET("/letters/pending", handlers.Review.ListPendingReview)
			admin.POST("/letters/:id/review", handlers.Review.StartReview)
			admin.POST("/letters/:id/approve", handlers.Review.ApproveLetter)
			admin.POST("/letters/:id/reject", handlers.Review.RejectLetter)
			admin.POST("/letters/:id/complete", handlers.Review.CompleteLetter)
		}
	}

	return router
}
