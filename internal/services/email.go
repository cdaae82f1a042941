package services

import (
	"context"
	"fmt"
	"log/slog"

	"meetingscheduler/internal/domain"
)

// EmailService mails meeting status changes. It satisfies both domain.EmailService and domain.Notifier.
type EmailService struct {
	logger   *slog.Logger
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(logger *slog.Logger, mailer domain.Mailer, renderer domain.EmailTemplateRenderer) *EmailService {
	return &EmailService{logger: logger, mailer: mailer, renderer: renderer}
}

// MeetingTemplateName returns the template used for a move into status.
func MeetingTemplateName(status domain.MeetingStatus) string {
	return "meeting_" + string(status)
}

// SendMeetingStatusChanged renders the "meeting_<status>" template and mails it to the recipient.
func (s *EmailService) SendMeetingStatusChanged(ctx context.Context, event domain.MeetingStatusChanged) error {
	if event.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient email is missing for meeting request %s", domain.ErrInvalidInput, event.MeetingRequestID)
	}
	data := &domain.MeetingEmailData{
		Email:            event.RecipientEmail,
		MeetingRequestID: event.MeetingRequestID,
		OldStatus:        string(event.OldStatus),
		NewStatus:        string(event.NewStatus),
		StartAt:          event.StartAt,
		EndAt:            event.EndAt,
	}
	name := MeetingTemplateName(event.NewStatus)
	subject, htmlBody, textBody, err := s.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}
	if err := s.mailer.Send(ctx, event.RecipientEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", name, err)
	}
	s.logger.InfoContext(ctx, "meeting email sent",
		"meeting_request_id", event.MeetingRequestID,
		"status", event.NewStatus,
		"to", event.RecipientEmail,
	)
	return nil
}

// Notify implements domain.Notifier by mailing the event directly, without a queue.
func (s *EmailService) Notify(ctx context.Context, event domain.MeetingStatusChanged) error {
	return s.SendMeetingStatusChanged(ctx, event)
}
