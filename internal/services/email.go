package services

import (
	"context"
	"fmt"
	"log/slog"

	"secretsanta/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendDrawCompleted tells one participant the draw happened, using the "draw_completed" template.
func (s *emailService) SendDrawCompleted(ctx context.Context, data *domain.DrawCompletedEmailData) error {
	if data == nil {
		return fmt.Errorf("draw completed email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("draw_completed", data)
	if err != nil {
		return fmt.Errorf("failed to render draw_completed template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send draw completed email: %w", err)
	}
	s.logger.DebugContext(ctx, "draw completed email sent", "to", data.Email)
	return nil
}
