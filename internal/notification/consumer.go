package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/lettercounsel/lettercounsel/internal/domain/user"
	"github.com/lettercounsel/lettercounsel/internal/email"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Consumer drains the notification queue and sends email for each message.
// Every message is acked regardless of outcome: notification delivery is
// best-effort and a failed send is a log line, not a redelivery loop.
type Consumer struct {
	subscriber Subscriber
	email      *email.Email
	userRepo   user.Repository
	log        *logger.Logger
}

func NewConsumer(subscriber Subscriber, emailSvc *email.Email, userRepo user.Repository, log *logger.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		email:      emailSvc,
		userRepo:   userRepo,
		log:        log,
	}
}

// Start consumes until ctx is cancelled or the queue closes.
func (c *Consumer) Start(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.handle(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var notification types.NotificationMessage
	if err := json.Unmarshal(msg.Payload, &notification); err != nil {
		c.log.Errorw("dropping malformed notification",
			"message_uuid", msg.UUID,
			"error", err,
		)
		return
	}

	for _, recipient := range notification.Recipients {
		address, ok := c.resolveAddress(ctx, recipient)
		if !ok {
			c.log.Warnw("skipping notification recipient without address",
				"notification_id", notification.ID,
				"template", notification.Template,
				"user_id", recipient.UserID,
			)
			continue
		}

		_, err := c.email.SendTemplate(ctx, email.SendTemplateRequest{
			ToAddress: address,
			Template:  notification.Template,
			Data:      notification.Data,
		})
		if err != nil {
			c.log.Errorw("notification delivery failed",
				"notification_id", notification.ID,
				"template", notification.Template,
				"to", address,
				"error", err,
			)
		}
	}
}

func (c *Consumer) resolveAddress(ctx context.Context, recipient types.NotificationRecipient) (string, bool) {
	if recipient.AdminGroup {
		address := c.email.AdminGroupAddress()
		return address, address != ""
	}
	if recipient.Email != "" {
		return recipient.Email, true
	}
	if recipient.UserID != "" {
		u, err := c.userRepo.Get(ctx, recipient.UserID)
		if err != nil {
			c.log.Warnw("failed to resolve notification recipient",
				"user_id", recipient.UserID,
				"error", err,
			)
			return "", false
		}
		return u.Email, u.Email != ""
	}
	return "", false
}
