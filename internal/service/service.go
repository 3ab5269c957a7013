package service

import (
	"github.com/lettercounsel/lettercounsel/internal/aigen"
	"github.com/lettercounsel/lettercounsel/internal/cache"
	"github.com/lettercounsel/lettercounsel/internal/config"
	"github.com/lettercounsel/lettercounsel/internal/domain/audit"
	"github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	"github.com/lettercounsel/lettercounsel/internal/domain/letter"
	"github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	"github.com/lettercounsel/lettercounsel/internal/domain/user"
	"github.com/lettercounsel/lettercounsel/internal/domain/webhookevent"
	"github.com/lettercounsel/lettercounsel/internal/idempotency"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/notification"
	"github.com/lettercounsel/lettercounsel/internal/payment"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
)

// ServiceParams bundles the dependencies shared by all services. Services
// embed it so constructors stay stable as dependencies grow.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IDB
	Sentry *sentry.Service

	LetterRepo       letter.Repository
	SubRepo          subscription.Repository
	AuditRepo        audit.Repository
	WebhookEventRepo webhookevent.Repository
	CouponRepo       coupon.Repository
	UserRepo         user.Repository

	Generator      aigen.Generator
	Dispatcher     notification.Dispatcher
	Gateway        payment.Gateway
	IdempotencyGen *idempotency.Generator
	Cache          cache.Cache
}
