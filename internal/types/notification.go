package types

// NotificationTemplate names an email template known to the email service.
type NotificationTemplate string

const (
	TemplateLetterPendingReview   NotificationTemplate = "letter-pending-review"
	TemplateLetterApproved        NotificationTemplate = "letter-approved"
	TemplateLetterRejected        NotificationTemplate = "letter-rejected"
	TemplateSubscriptionActivated NotificationTemplate = "subscription-activated"
	TemplatePaymentFailed         NotificationTemplate = "payment-failed"
)

func (t NotificationTemplate) String() string {
	return string(t)
}

// NotificationRecipient is either a concrete email address or the admin
// review group.
type NotificationRecipient struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	// AdminGroup addresses the attorney review group instead of a single user.
	AdminGroup bool `json:"admin_group,omitempty"`
}

// NotificationMessage is the unit placed on the outbound queue. Dispatch is
// best-effort: consumers log failures and never surface them to the flow
// that enqueued the message.
type NotificationMessage struct {
	ID         string                  `json:"id"`
	Template   NotificationTemplate    `json:"template"`
	Recipients []NotificationRecipient `json:"recipients"`
	Data       map[string]interface{}  `json:"data,omitempty"`
}
