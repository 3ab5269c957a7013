package testutil

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/cache"
	"github.com/lettercounsel/lettercounsel/internal/config"
	"github.com/lettercounsel/lettercounsel/internal/idempotency"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores bundles the in-memory repositories a service test reaches into.
type Stores struct {
	LetterRepo       *InMemoryLetterStore
	SubRepo          *InMemorySubscriptionStore
	AuditRepo        *InMemoryAuditStore
	WebhookEventRepo *InMemoryWebhookEventStore
	CouponRepo       *InMemoryCouponStore
	UserRepo         *InMemoryUserStore
}

// BaseServiceTestSuite provides fresh in-memory infrastructure per test.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	cfg        *config.Configuration
	log        *logger.Logger
	db         *InMemoryDB
	stores     Stores
	sentrySvc  *sentry.Service
	generator  *FakeGenerator
	dispatcher *CapturingDispatcher
	gateway    *FakeGateway
}

// SetupTest initializes fresh stores and a context acting as a subscriber.
func (s *BaseServiceTestSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()

	log, err := logger.NewLogger(s.cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.log = log

	s.db = NewInMemoryDB()
	s.stores = Stores{
		LetterRepo:       NewInMemoryLetterStore(),
		SubRepo:          NewInMemorySubscriptionStore(),
		AuditRepo:        NewInMemoryAuditStore(),
		WebhookEventRepo: NewInMemoryWebhookEventStore(),
		CouponRepo:       NewInMemoryCouponStore(),
		UserRepo:         NewInMemoryUserStore(),
	}
	s.sentrySvc = sentry.NewSentryService(s.cfg, s.log)
	s.generator = NewFakeGenerator()
	s.dispatcher = NewCapturingDispatcher()
	s.gateway = NewFakeGateway()

	s.ctx = s.ContextFor("user_test", types.UserRoleSubscriber)
}

// ContextFor returns a request context authenticated as the given user.
func (s *BaseServiceTestSuite) ContextFor(userID string, role types.UserRole) context.Context {
	ctx := types.SetUserID(context.Background(), userID)
	return types.SetUserRole(ctx, role)
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.log
}

func (s *BaseServiceTestSuite) GetDB() *InMemoryDB {
	return s.db
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentrySvc
}

func (s *BaseServiceTestSuite) GetGenerator() *FakeGenerator {
	return s.generator
}

func (s *BaseServiceTestSuite) GetDispatcher() *CapturingDispatcher {
	return s.dispatcher
}

func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

func (s *BaseServiceTestSuite) GetIdempotencyGen() *idempotency.Generator {
	return idempotency.NewGenerator()
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return cache.GetInMemoryCache()
}
