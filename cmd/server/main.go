package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/aigen"
	"github.com/lettercounsel/lettercounsel/internal/api"
	v1 "github.com/lettercounsel/lettercounsel/internal/api/v1"
	"github.com/lettercounsel/lettercounsel/internal/auth"
	"github.com/lettercounsel/lettercounsel/internal/cache"
	"github.com/lettercounsel/lettercounsel/internal/config"
	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	domainCoupon "github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	domainSub "github.com/lettercounsel/lettercounsel/internal/domain/subscription"
	domainUser "github.com/lettercounsel/lettercounsel/internal/domain/user"
	domainEvent "github.com/lettercounsel/lettercounsel/internal/domain/webhookevent"
	"github.com/lettercounsel/lettercounsel/internal/email"
	"github.com/lettercounsel/lettercounsel/internal/idempotency"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/notification"
	"github.com/lettercounsel/lettercounsel/internal/payment"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	repository "github.com/lettercounsel/lettercounsel/internal/repository/postgres"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
	"github.com/lettercounsel/lettercounsel/internal/service"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			sentry.NewSentryService,
			postgres.NewClient,
			func(c *postgres.Client) postgres.IDB { return c },

			repository.NewLetterRepository,
			repository.NewSubscriptionRepository,
			repository.NewAuditRepository,
			repository.NewWebhookEventRepository,
			repository.NewCouponRepository,
			repository.NewUserRepository,

			idempotency.NewGenerator,
			func() cache.Cache { return cache.GetInMemoryCache() },
			aigen.NewClient,
			email.NewEmailClient,
			email.NewEmail,
			payment.NewStripeGateway,
			auth.NewSupabaseAuth,

			notification.NewDispatcher,
			func(ps notification.PubSub) notification.Dispatcher { return ps },
			func(ps notification.PubSub) notification.Subscriber { return ps },
			notification.NewConsumer,

			newServiceParams,
			service.NewAllowanceService,
			service.NewLetterService,
			service.NewReviewService,
			service.NewAuditService,
			service.NewPaymentService,
			service.NewSubscriptionService,
			service.NewCommissionService,

			v1.NewHealthHandler,
			v1.NewLetterHandler,
			v1.NewReviewHandler,
			v1.NewAuditHandler,
			v1.NewSubscriptionHandler,
			v1.NewCommissionHandler,
			v1.NewWebhookHandler,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			migrate,
			manageDB,
			startConsumer,
			startServer,
		),
	)
	app.Run()
}

// serviceDeps collects everything ServiceParams needs from the container.
type serviceDeps struct {
	fx.In

	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IDB
	Sentry *sentry.Service

	LetterRepo       domainLetter.Repository
	SubRepo          domainSub.Repository
	AuditRepo        domainAudit.Repository
	WebhookEventRepo domainEvent.Repository
	CouponRepo       domainCoupon.Repository
	UserRepo         domainUser.Repository

	Generator      aigen.Generator
	Dispatcher     notification.Dispatcher
	Gateway        payment.Gateway
	IdempotencyGen *idempotency.Generator
	Cache          cache.Cache
}

func newServiceParams(p serviceDeps) service.ServiceParams {
	return service.ServiceParams{
		Logger:           p.Logger,
		Config:           p.Config,
		DB:               p.DB,
		Sentry:           p.Sentry,
		LetterRepo:       p.LetterRepo,
		SubRepo:          p.SubRepo,
		AuditRepo:        p.AuditRepo,
		WebhookEventRepo: p.WebhookEventRepo,
		CouponRepo:       p.CouponRepo,
		UserRepo:         p.UserRepo,
		Generator:        p.Generator,
		Dispatcher:       p.Dispatcher,
		Gateway:          p.Gateway,
		IdempotencyGen:   p.IdempotencyGen,
		Cache:            p.Cache,
	}
}

func newHandlers(
	health *v1.HealthHandler,
	letter *v1.LetterHandler,
	review *v1.ReviewHandler,
	audit *v1.AuditHandler,
	subscription *v1.SubscriptionHandler,
	commission *v1.CommissionHandler,
	webhook *v1.WebhookHandler,
) api.Handlers {
	return api.Handlers{
		Health:       health,
		Letter:       letter,
		Review:       review,
		Audit:        audit,
		Subscription: subscription,
		Commission:   commission,
		Webhook:      webhook,
	}
}

func migrate(client *postgres.Client, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}
	return postgres.RunMigrations(client, cfg, log)
}

func manageDB(lc fx.Lifecycle, client *postgres.Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}

func startConsumer(lc fx.Lifecycle, consumer *notification.Consumer, dispatcher notification.Dispatcher, sentrySvc *sentry.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return consumer.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			err := dispatcher.Close()
			sentrySvc.Flush()
			return err
		},
	})
}

func startServer(lc fx.Lifecycle, cfg *config.Configuration, router *gin.Engine, log *logger.Logger) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
