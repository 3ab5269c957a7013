package email

import "github.com/lettercounsel/lettercounsel/internal/types"

// emailTemplates stores email templates as string constants, keyed by the
// notification template name.
var emailTemplates = map[string]string{
	types.TemplateLetterPendingReview.String(): `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Letter ready for review</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>A new letter draft is waiting for attorney review.</p>
    <p><strong>Letter:</strong> {{.letter_id}}<br/>
    <strong>Type:</strong> {{.letter_type}}</p>
    <p>Please review it in the admin queue.</p>
</body>
</html>`,

	types.TemplateLetterApproved.String(): `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your letter has been approved</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Good news!</p>
    <p>Your {{.letter_type}} letter has been reviewed and approved by our attorney team.</p>
    <p>You can view the final letter in your dashboard.</p>
</body>
</html>`,

	types.TemplateLetterRejected.String(): `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your letter needs changes</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Your {{.letter_type}} letter was reviewed and needs changes before it can be approved.</p>
    <p><strong>Reviewer feedback:</strong></p>
    <p>{{.rejection_reason}}</p>
    <p>You can resubmit the letter from your dashboard; the reviewer's feedback will be taken into account in the next draft.</p>
</body>
</html>`,

	types.TemplateSubscriptionActivated.String(): `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your subscription is active</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Welcome aboard!</p>
    <p>Your <strong>{{.plan_type}}</strong> plan is now active.</p>
    <p>Letters included this period: <strong>{{.letters_remaining}}</strong></p>
    <p>You can start a new letter from your dashboard any time.</p>
</body>
</html>`,

	types.TemplatePaymentFailed.String(): `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Payment issue with your subscription</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>We could not process the payment for your subscription.</p>
    <p>Your subscription has not been activated. Please retry checkout or update your payment method.</p>
</body>
</html>`,
}

// templateSubjects maps templates to the subject line used when sending.
var templateSubjects = map[string]string{
	types.TemplateLetterPendingReview.String():   "New letter awaiting review",
	types.TemplateLetterApproved.String():        "Your letter has been approved",
	types.TemplateLetterRejected.String():        "Your letter needs changes",
	types.TemplateSubscriptionActivated.String(): "Your subscription is active",
	types.TemplatePaymentFailed.String():         "Payment issue with your subscription",
}
