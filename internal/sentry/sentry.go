package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/config"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Service wraps the Sentry client. A disabled service is a no-op so call
// sites never need to branch.
type Service struct {
	cfg *config.Configuration
	log *logger.Logger
}

// NewSentryService initializes Sentry if enabled.
func NewSentryService(cfg *config.Configuration, log *logger.Logger) *Service {
	svc := &Service{cfg: cfg, log: log}

	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		return svc
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
	}
	return svc
}

func (s *Service) enabled() bool {
	return s.cfg.Sentry.Enabled && s.cfg.Sentry.DSN != ""
}

// CaptureException reports err with the request identity attached.
func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.enabled() || err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", types.GetRequestID(ctx))
		scope.SetUser(sentry.User{ID: types.GetUserID(ctx)})
	})
	hub.CaptureException(err)
}

// GinMiddleware returns the Sentry recovery middleware for gin.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	if !s.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// Flush drains pending events on shutdown.
func (s *Service) Flush() {
	if s.enabled() {
		sentry.Flush(2 * time.Second)
	}
}
