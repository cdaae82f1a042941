package domain

import (
	"context"
	"time"
)

// MeetingStatusChanged is published after a meeting request is created or changes status.
// OldStatus is empty for a newly created request.
type MeetingStatusChanged struct {
	MeetingRequestID string        `json:"meeting_request_id"`
	OldStatus        MeetingStatus `json:"old_status"`
	NewStatus        MeetingStatus `json:"new_status"`
	RecipientID      string        `json:"recipient_id"`
	RecipientEmail   string        `json:"recipient_email"`
	SpeakerID        string        `json:"speaker_id"`
	RequesterID      string        `json:"requester_id"`
	StartAt          time.Time     `json:"start_at"`
	EndAt            time.Time     `json:"end_at"`
	OccurredAt       time.Time     `json:"occurred_at"`
}

// Recipient returns who should hear about a move into status: the speaker for new and
// cancelled requests, the requester for the speaker's answers.
func Recipient(m *MeetingRequest, status MeetingStatus) string {
	switch status {
	case MeetingAccepted, MeetingRejected:
		return m.RequesterID
	default:
		return m.SpeakerID
	}
}

// Notifier delivers meeting status events (infrastructure port). Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event MeetingStatusChanged) error
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// MeetingEmailData is the template data for meeting status emails.
type MeetingEmailData struct {
	Email            string
	MeetingRequestID string
	OldStatus        string
	NewStatus        string
	StartAt          time.Time
	EndAt            time.Time
}

// EmailService sends domain-level emails.
type EmailService interface {
	SendMeetingStatusChanged(ctx context.Context, event MeetingStatusChanged) error
}
