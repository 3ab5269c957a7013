package testutil

import (
	"context"
	"sync"

	"github.com/lettercounsel/lettercounsel/internal/aigen"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/payment"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// FakeGenerator is a programmable aigen.Generator. Set Err to force a
// failure; otherwise Generate returns Content with the request recorded.
// RespectContext makes Generate fail on an already-canceled context, the
// way the HTTP-backed client does.
type FakeGenerator struct {
	mu             sync.Mutex
	Content        string
	Model          string
	Err            error
	RespectContext bool
	Requests       []*aigen.Request
}

func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{
		Content: "Dear Sir or Madam,\n\nThis letter serves as formal notice.",
		Model:   "fake-model",
	}
}

func (g *FakeGenerator) Generate(ctx context.Context, req *aigen.Request) (*aigen.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Requests = append(g.Requests, req)
	if g.RespectContext {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if g.Err != nil {
		return nil, g.Err
	}
	return &aigen.Result{Content: g.Content, Model: g.Model}, nil
}

// LastRequest returns the most recent generation request, nil when none.
func (g *FakeGenerator) LastRequest() *aigen.Request {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.Requests) == 0 {
		return nil
	}
	return g.Requests[len(g.Requests)-1]
}

// CapturingDispatcher records enqueued notifications instead of publishing.
type CapturingDispatcher struct {
	mu       sync.Mutex
	messages []*types.NotificationMessage
}

func NewCapturingDispatcher() *CapturingDispatcher {
	return &CapturingDispatcher{}
}

func (d *CapturingDispatcher) Enqueue(ctx context.Context, msg *types.NotificationMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *CapturingDispatcher) Close() error {
	return nil
}

func (d *CapturingDispatcher) Messages() []*types.NotificationMessage {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*types.NotificationMessage, len(d.messages))
	copy(out, d.messages)
	return out
}

// MessagesByTemplate filters recorded notifications by template.
func (d *CapturingDispatcher) MessagesByTemplate(template types.NotificationTemplate) []*types.NotificationMessage {
	matched := make([]*types.NotificationMessage, 0)
	for _, msg := range d.Messages() {
		if msg.Template == template {
			matched = append(matched, msg)
		}
	}
	return matched
}

func (d *CapturingDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = nil
}

// FakeGateway is a payment.Gateway that returns canned sessions and events.
type FakeGateway struct {
	mu sync.Mutex

	// SessionURL is returned on every created session.
	SessionURL string
	// CreateErr forces CreateCheckoutSession to fail.
	CreateErr error
	// Event is returned by VerifyWebhook when Signature matches; any other
	// signature is rejected the way a bad Stripe signature would be.
	Event     *payment.WebhookEvent
	Signature string

	CreatedSessions []payment.CheckoutInput
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		SessionURL: "https://checkout.example.com/session",
		Signature:  "valid-signature",
	}
}

func (g *FakeGateway) CreateCheckoutSession(ctx context.Context, input payment.CheckoutInput) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CreateErr != nil {
		return nil, g.CreateErr
	}

	g.CreatedSessions = append(g.CreatedSessions, input)
	sessionID := types.GenerateUUIDWithPrefix("cs_test")
	return &payment.CheckoutSession{
		SessionID: sessionID,
		URL:       g.SessionURL,
	}, nil
}

func (g *FakeGateway) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if signature != g.Signature {
		return nil, ierr.NewError("webhook signature verification failed").
			WithHint("Webhook signature is not valid").
			Mark(ierr.ErrPermissionDenied)
	}
	if g.Event == nil {
		return &payment.WebhookEvent{Handled: false}, nil
	}
	cp := *g.Event
	return &cp, nil
}
