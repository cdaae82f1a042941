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

// MeetingStatusHandler mails the recipient of a meeting status task.
type MeetingStatusHandler struct {
	logger *slog.Logger
	email  domain.EmailService
}

func NewMeetingStatusHandler(logger *slog.Logger, email domain.EmailService) *MeetingStatusHandler {
	return &MeetingStatusHandler{logger: logger, email: email}
}

// ProcessTask implements asynq.Handler. Malformed payloads and events that can never be
// delivered are not retried.
func (h *MeetingStatusHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var event domain.MeetingStatusChanged
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if err := h.email.SendMeetingStatusChanged(ctx, event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.logger.WarnContext(ctx, "dropping undeliverable notification",
				"meeting_request_id", event.MeetingRequestID, "err", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// NewServeMux routes notification tasks to h.
func NewServeMux(h *MeetingStatusHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeMeetingStatusChanged, h)
	return mux
}
