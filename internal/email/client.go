package email

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the Resend API client. When email is disabled the client
// is constructed without an API key and IsEnabled reports false.
type EmailClient struct {
	client            *resend.Client
	enabled           bool
	fromAddress       string
	adminGroupAddress string
}

func NewEmailClient(cfg *config.Configuration) *EmailClient {
	c := &EmailClient{
		enabled:           cfg.Email.Enabled,
		fromAddress:       cfg.Email.FromAddress,
		adminGroupAddress: cfg.Email.AdminGroupAddress,
	}
	if cfg.Email.Enabled {
		c.client = resend.NewClient(cfg.Email.APIKey)
	}
	return c
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// GetAdminGroupAddress returns the address that receives review-queue mail.
func (c *EmailClient) GetAdminGroupAddress() string {
	return c.adminGroupAddress
}

// SendEmail sends a single email and returns the provider message ID.
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Email provider rejected the message").
			WithReportableDetails(map[string]interface{}{
				"to":      to,
				"subject": subject,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	return sent.Id, nil
}
