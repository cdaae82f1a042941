package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meetingscheduler/internal/domain"
)

// DefaultNotifyTimeout bounds one background notification attempt.
const DefaultNotifyTimeout = 10 * time.Second

// NotificationDispatcher hands meeting status changes to a Notifier in the background.
// Callers never wait on delivery and never see its errors; failures are logged.
type NotificationDispatcher struct {
	logger   *slog.Logger
	notifier domain.Notifier
	users    domain.UserRepository
	timeout  time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewNotificationDispatcher returns a dispatcher. users may be nil, in which case events
// carry no recipient email.
func NewNotificationDispatcher(logger *slog.Logger, notifier domain.Notifier, users domain.UserRepository, timeout time.Duration) *NotificationDispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &NotificationDispatcher{
		logger:   logger,
		notifier: notifier,
		users:    users,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Dispatch publishes the move of m from oldStatus to m.Status. It returns immediately.
func (d *NotificationDispatcher) Dispatch(m *domain.MeetingRequest, oldStatus domain.MeetingStatus) {
	if d == nil || d.notifier == nil {
		return
	}
	snapshot := *m
	occurredAt := d.now()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification panicked", "meeting_request_id", snapshot.ID, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.send(ctx, &snapshot, oldStatus, occurredAt)
	}()
}

func (d *NotificationDispatcher) send(ctx context.Context, m *domain.MeetingRequest, oldStatus domain.MeetingStatus, occurredAt time.Time) {
	recipientID := domain.Recipient(m, m.Status)
	event := domain.MeetingStatusChanged{
		MeetingRequestID: m.ID,
		OldStatus:        oldStatus,
		NewStatus:        m.Status,
		RecipientID:      recipientID,
		SpeakerID:        m.SpeakerID,
		RequesterID:      m.RequesterID,
		StartAt:          m.StartAt,
		EndAt:            m.EndAt,
		OccurredAt:       occurredAt,
	}
	if d.users != nil {
		user, err := d.users.GetByID(ctx, recipientID)
		if err != nil {
			d.logger.WarnContext(ctx, "notification recipient lookup failed",
				"meeting_request_id", m.ID, "recipient_id", recipientID, "err", err)
		} else {
			event.RecipientEmail = user.Email
		}
	}
	if err := d.notifier.Notify(ctx, event); err != nil {
		d.logger.ErrorContext(ctx, "notification failed",
			"meeting_request_id", m.ID,
			"old_status", oldStatus,
			"new_status", m.Status,
			"err", err,
		)
		return
	}
	d.logger.DebugContext(ctx, "notification dispatched", "meeting_request_id", m.ID, "new_status", m.Status)
}

// Close waits for in-flight notifications to finish.
func (d *NotificationDispatcher) Close() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
