package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetingscheduler/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueNotifications}, nil
}

type fakeEmailService struct {
	got []domain.MeetingStatusChanged
	err error
}

func (f *fakeEmailService) SendMeetingStatusChanged(_ context.Context, e domain.MeetingStatusChanged) error {
	f.got = append(f.got, e)
	return f.err
}

var sampleEvent = domain.MeetingStatusChanged{
	MeetingRequestID: "mr-1",
	OldStatus:        domain.MeetingRequested,
	NewStatus:        domain.MeetingAccepted,
	RecipientID:      "req-1",
	RecipientEmail:   "req-1@example.com",
	SpeakerID:        "spk-1",
	RequesterID:      "req-1",
	StartAt:          time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC),
	EndAt:            time.Date(2025, 11, 13, 10, 15, 0, 0, time.UTC),
}

func TestNotifier_Notify(t *testing.T) {
	client := &fakeEnqueuer{}
	n := NewNotifier(discardLogger(), client)

	require.NoError(t, n.Notify(context.Background(), sampleEvent))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeMeetingStatusChanged, client.tasks[0].Type())

	var decoded domain.MeetingStatusChanged
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &decoded))
	assert.Equal(t, sampleEvent, decoded)
}

func TestNotifier_Notify_Errors(t *testing.T) {
	n := NewNotifier(discardLogger(), &fakeEnqueuer{err: asynq.ErrTaskIDConflict})
	require.NoError(t, n.Notify(context.Background(), sampleEvent))

	n = NewNotifier(discardLogger(), &fakeEnqueuer{err: errors.New("redis down")})
	require.Error(t, n.Notify(context.Background(), sampleEvent))
}

func TestMeetingStatusHandler_ProcessTask(t *testing.T) {
	ctx := context.Background()
	task, err := NewMeetingStatusTask(sampleEvent)
	require.NoError(t, err)

	t.Run("delivers", func(t *testing.T) {
		email := &fakeEmailService{}
		require.NoError(t, NewMeetingStatusHandler(discardLogger(), email).ProcessTask(ctx, task))
		require.Len(t, email.got, 1)
		assert.Equal(t, "req-1@example.com", email.got[0].RecipientEmail)
	})
	t.Run("transient failure is retried", func(t *testing.T) {
		email := &fakeEmailService{err: errors.New("ses throttled")}
		err := NewMeetingStatusHandler(discardLogger(), email).ProcessTask(ctx, task)
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})
	t.Run("undeliverable is skipped", func(t *testing.T) {
		email := &fakeEmailService{err: domain.ErrInvalidInput}
		err := NewMeetingStatusHandler(discardLogger(), email).ProcessTask(ctx, task)
		require.ErrorIs(t, err, asynq.SkipRetry)
	})
	t.Run("bad payload is skipped", func(t *testing.T) {
		email := &fakeEmailService{}
		err := NewMeetingStatusHandler(discardLogger(), email).ProcessTask(ctx, asynq.NewTask(TypeMeetingStatusChanged, []byte("{")))
		require.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, email.got)
	})
}

func TestLogNotifier(t *testing.T) {
	require.NoError(t, NewLogNotifier(discardLogger()).Notify(context.Background(), sampleEvent))
}
