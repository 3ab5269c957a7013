package webhookevent

import (
	"time"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// ProcessedEvent is the idempotency record for one externally observed
// payment event. It is written in the same transaction as the event's
// effects, so a recorded event id always implies the effects committed.
type ProcessedEvent struct {
	EventID   string                 `json:"event_id"`
	EventType types.WebhookEventType `json:"event_type"`
	// SubscriptionID is retained so a duplicate delivery can return the same
	// result as the first.
	SubscriptionID string    `json:"subscription_id"`
	ProcessedAt    time.Time `json:"processed_at"`
}
