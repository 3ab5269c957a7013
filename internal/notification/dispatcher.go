package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

const notificationTopic = "notifications"

// Dispatcher accepts notification messages for asynchronous delivery.
// Enqueue never blocks the caller on delivery: a message that cannot be
// queued is logged and dropped, and delivery failures stay inside the
// consumer. Core flows must not fail because an email did not go out.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg *types.NotificationMessage)
	Close() error
}

// Subscriber is the consuming side of the queue. The consumer depends on
// this instead of Dispatcher so producers never see it.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// PubSub is the full in-process queue: producers hold the Dispatcher half,
// the consumer holds the Subscriber half.
type PubSub interface {
	Dispatcher
	Subscriber
}

type dispatcher struct {
	pubsub *gochannel.GoChannel
	log    *logger.Logger
}

func NewDispatcher(cfg *config.Configuration, log *logger.Logger) PubSub {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: int64(cfg.Notification.BufferSize),
		},
		newWatermillLogger(log),
	)
	return &dispatcher{pubsub: pubsub, log: log}
}

func (d *dispatcher) Enqueue(ctx context.Context, msg *types.NotificationMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		d.log.Errorw("failed to encode notification, dropping",
			"notification_id", msg.ID,
			"template", msg.Template,
			"error", err,
		)
		return
	}

	wm := message.NewMessage(msg.ID, payload)
	wm.Metadata.Set("template", msg.Template.String())

	if err := d.pubsub.Publish(notificationTopic, wm); err != nil {
		d.log.Errorw("failed to enqueue notification, dropping",
			"notification_id", msg.ID,
			"template", msg.Template,
			"error", err,
		)
		return
	}

	d.log.Debugw("notification enqueued",
		"notification_id", msg.ID,
		"template", msg.Template,
	)
}

func (d *dispatcher) Close() error {
	return d.pubsub.Close()
}

// Subscribe hands the notification stream to a consumer. Exposed separately
// from Dispatcher so producers never see the consuming side.
func (d *dispatcher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := d.pubsub.Subscribe(ctx, notificationTopic)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to subscribe to notification topic").
			Mark(ierr.ErrSystem)
	}
	return messages, nil
}
