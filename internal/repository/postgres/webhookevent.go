package postgres

import (
	"context"
	"database/sql"
	"time"

	domainEvent "github.com/lettercounsel/lettercounsel/internal/domain/webhookevent"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
)

type webhookEventRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewWebhookEventRepository(db postgres.IDB, log *logger.Logger) domainEvent.Repository {
	return &webhookEventRepository{db: db, log: log}
}

// CheckAndRecord relies on the primary key: the insert either wins or hits
// the conflict, never both, even for concurrent deliveries of one event.
func (r *webhookEventRepository) CheckAndRecord(ctx context.Context, event *domainEvent.ProcessedEvent) (bool, *domainEvent.ProcessedEvent, error) {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now().UTC()
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		INSERT INTO webhook_events (event_id, event_type, subscription_id, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.EventType, event.SubscriptionID, event.ProcessedAt,
	)
	if err != nil {
		return false, nil, ierr.WithError(err).
			WithHint("Failed to record webhook event").
			WithReportableDetails(map[string]interface{}{
				"event_id": event.EventID,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, ierr.WithError(err).
			WithHint("Failed to record webhook event").
			Mark(ierr.ErrDatabase)
	}
	if affected == 1 {
		return true, nil, nil
	}

	existing, err := r.Get(ctx, event.EventID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *webhookEventRepository) Get(ctx context.Context, eventID string) (*domainEvent.ProcessedEvent, error) {
	var event domainEvent.ProcessedEvent
	err := r.db.Querier(ctx).QueryRowContext(ctx, `
		SELECT event_id, event_type, subscription_id, processed_at
		FROM webhook_events WHERE event_id = $1`,
		eventID,
	).Scan(&event.EventID, &event.EventType, &event.SubscriptionID, &event.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("webhook event not found").
			WithHint("Webhook event not found").
			WithReportableDetails(map[string]interface{}{
				"event_id": eventID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get webhook event").
			Mark(ierr.ErrDatabase)
	}
	return &event, nil
}
