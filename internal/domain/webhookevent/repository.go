package webhookevent

import (
	"context"
)

// Repository guards payment-event processing against duplicates.
type Repository interface {
	// CheckAndRecord atomically records the event if unseen. It returns
	// inserted=false with the previously stored record when the event id was
	// already processed; two concurrent deliveries of the same id cannot
	// both observe inserted=true.
	CheckAndRecord(ctx context.Context, event *ProcessedEvent) (inserted bool, existing *ProcessedEvent, err error)

	// Get retrieves a processed event by id, ErrNotFound when absent.
	Get(ctx context.Context, eventID string) (*ProcessedEvent, error)
}
