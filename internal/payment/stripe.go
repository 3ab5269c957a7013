package payment

import (
	"context"
	"encoding/json"

	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

var stripeCentsFactor = decimal.NewFromInt(100)

type stripeGateway struct {
	cfg config.StripeConfig
	log *logger.Logger
}

func NewStripeGateway(cfg *config.Configuration, log *logger.Logger) Gateway {
	stripe.Key = cfg.Stripe.SecretKey
	return &stripeGateway{
		cfg: cfg.Stripe,
		log: log,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error) {
	amountCents := input.Price.Mul(stripeCentsFactor).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(input.UserEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.DisplayName),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("user_id", input.UserID)
	params.AddMetadata("plan_type", input.PlanType.String())
	if input.CouponCode != "" {
		params.AddMetadata("coupon_code", input.CouponCode)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create checkout session").
			WithReportableDetails(map[string]interface{}{
				"plan_type": input.PlanType,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	g.log.Infow("checkout session created",
		"session_id", sess.ID,
		"plan_type", input.PlanType,
		"amount_cents", amountCents,
	)
	return &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

func (g *stripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook signature verification failed").
			Mark(ierr.ErrPermissionDenied)
	}

	out := &WebhookEvent{ID: event.ID}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode checkout session payload").
				Mark(ierr.ErrValidation)
		}
		out.Type = types.WebhookEventCheckoutCompleted
		out.SessionID = sess.ID
		out.Handled = true
	default:
		g.log.Debugw("ignoring unhandled webhook event type",
			"event_id", event.ID,
			"event_type", event.Type,
		)
	}
	return out, nil
}
