package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// DrawCompletedEmailData holds data for the email sent to each participant after the draw.
// It deliberately carries no receiver.
type DrawCompletedEmailData struct {
	Email     string
	Name      string
	GroupName string
	ResultURL string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendDrawCompleted(ctx context.Context, data *DrawCompletedEmailData) error
}
