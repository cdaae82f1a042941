// Package queue carries meeting status notifications over asynq so that email delivery
// happens in the worker process, with retries, instead of inside API requests.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"meetingscheduler/internal/domain"
)

const (
	// TypeMeetingStatusChanged is the asynq task type for domain.MeetingStatusChanged.
	TypeMeetingStatusChanged = "meeting:status_changed"
	// QueueNotifications is the queue notification tasks are enqueued on.
	QueueNotifications = "notifications"
	// MaxRetry bounds delivery attempts for one notification.
	MaxRetry = 5
)

// NewMeetingStatusTask encodes event as a task. The task ID is derived from the request and
// its new status, so publishing the same change twice enqueues it once.
func NewMeetingStatusTask(event domain.MeetingStatusChanged) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", TypeMeetingStatusChanged, err)
	}
	return asynq.NewTask(TypeMeetingStatusChanged, payload,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(MaxRetry),
		asynq.TaskID(event.MeetingRequestID+":"+string(event.NewStatus)),
	), nil
}

// enqueuer is the part of *asynq.Client the notifier uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier implements domain.Notifier by enqueueing a task per event.
type Notifier struct {
	logger *slog.Logger
	client enqueuer
}

// NewNotifier returns a Notifier publishing through client, normally an *asynq.Client.
func NewNotifier(logger *slog.Logger, client enqueuer) *Notifier {
	return &Notifier{logger: logger, client: client}
}

func (n *Notifier) Notify(ctx context.Context, event domain.MeetingStatusChanged) error {
	task, err := NewMeetingStatusTask(event)
	if err != nil {
		return err
	}
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			n.logger.DebugContext(ctx, "notification already enqueued", "meeting_request_id", event.MeetingRequestID, "new_status", event.NewStatus)
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", TypeMeetingStatusChanged, err)
	}
	n.logger.DebugContext(ctx, "notification enqueued", "task_id", info.ID, "queue", info.Queue)
	return nil
}

// LogNotifier implements domain.Notifier by logging the event. Used when no queue is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.MeetingStatusChanged) error {
	n.logger.InfoContext(ctx, "meeting status changed",
		"meeting_request_id", event.MeetingRequestID,
		"old_status", event.OldStatus,
		"new_status", event.NewStatus,
		"recipient_id", event.RecipientID,
	)
	return nil
}
