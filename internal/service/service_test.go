package service

import (
	"context"

	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	"github.com/lettercounsel/lettercounsel/internal/testutil"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// newTestParams assembles ServiceParams from the suite's in-memory
// infrastructure.
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger: s.GetLogger(),
		Config: s.GetConfig(),
		DB:     s.GetDB(),
		Sentry: s.GetSentry(),

		LetterRepo:       stores.LetterRepo,
		SubRepo:          stores.SubRepo,
		AuditRepo:        stores.AuditRepo,
		WebhookEventRepo: stores.WebhookEventRepo,
		CouponRepo:       stores.CouponRepo,
		UserRepo:         stores.UserRepo,

		Generator:      s.GetGenerator(),
		Dispatcher:     s.GetDispatcher(),
		Gateway:        s.GetGateway(),
		IdempotencyGen: s.GetIdempotencyGen(),
		Cache:          s.GetCache(),
	}
}

// seedLetterForUser inserts a letter directly into the store, bypassing the
// lifecycle, for tests that only need history to exist.
func seedLetterForUser(s *testutil.BaseServiceTestSuite, userID string, status types.LetterStatus) *domainLetter.Letter {
	l := &domainLetter.Letter{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixLetter),
		UserID:       userID,
		LetterType:   types.LetterTypeDemand,
		LetterStatus: status,
		IntakeData:   map[string]string{"sender_name": "A", "recipient_name": "B", "issue_description": "C"},
		BaseModel:    types.GetDefaultBaseModel(context.Background()),
	}
	if err := s.GetStores().LetterRepo.Create(context.Background(), l); err != nil {
		s.T().Fatalf("failed to seed letter: %v", err)
	}
	return l
}
