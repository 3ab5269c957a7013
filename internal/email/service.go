package email

import (
	"bytes"
	"context"
	"html/template"

	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type SendEmailRequest struct {
	ToAddress   string
	FromAddress string
	Subject     string
	Text        string
}

type SendEmailResponse struct {
	MessageID string
	Success   bool
	Error     string
}

type SendTemplateRequest struct {
	ToAddress string
	Template  types.NotificationTemplate
	Data      map[string]interface{}
}

// Email renders and sends templated mail. When the client is disabled every
// send is a logged no-op so flows never branch on the email configuration.
type Email struct {
	client *EmailClient
	logger *logger.Logger
}

func NewEmail(client *EmailClient, log *logger.Logger) *Email {
	return &Email{
		client: client,
		logger: log,
	}
}

// AdminGroupAddress exposes the review-group address for recipient resolution.
func (s *Email) AdminGroupAddress() string {
	return s.client.GetAdminGroupAddress()
}

// SendEmail sends a plain text email.
func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{Success: false, Error: "email client is disabled"}, nil
	}

	fromAddress := s.client.GetFromAddress()
	if fromAddress == "" {
		fromAddress = req.FromAddress
	}

	messageID, err := s.client.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, "", req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)
	return &SendEmailResponse{MessageID: messageID, Success: true}, nil
}

// SendTemplate renders a known template and sends it.
func (s *Email) SendTemplate(ctx context.Context, req SendTemplateRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"template", req.Template,
		)
		return &SendEmailResponse{Success: false, Error: "email client is disabled"}, nil
	}

	htmlContent, err := s.renderTemplate(req.Template, req.Data)
	if err != nil {
		s.logger.Errorw("failed to render email template",
			"error", err,
			"template", req.Template,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	subject, ok := templateSubjects[req.Template.String()]
	if !ok {
		subject = "LetterCounsel notification"
	}

	messageID, err := s.client.SendEmail(ctx, s.client.GetFromAddress(), req.ToAddress, subject, htmlContent, "")
	if err != nil {
		s.logger.Errorw("failed to send templated email",
			"error", err,
			"to", req.ToAddress,
			"template", req.Template,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	s.logger.Infow("templated email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"template", req.Template,
	)
	return &SendEmailResponse{MessageID: messageID, Success: true}, nil
}

func (s *Email) renderTemplate(name types.NotificationTemplate, data map[string]interface{}) (string, error) {
	content, exists := emailTemplates[name.String()]
	if !exists {
		return "", ierr.NewErrorf("template not found: %s", name).
			WithHint("Unknown notification template").
			Mark(ierr.ErrNotFound)
	}

	tmpl, err := template.New("email").Parse(content)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to parse email template").
			Mark(ierr.ErrSystem)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to render email template").
			Mark(ierr.ErrSystem)
	}
	return buf.String(), nil
}
