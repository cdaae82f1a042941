package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/repository/memory"
	"meetingscheduler/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures events and optionally fails every call.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.MeetingStatusChanged
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e domain.MeetingStatusChanged) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) Events() []domain.MeetingStatusChanged {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.MeetingStatusChanged(nil), n.events...)
}

type meetingFixture struct {
	svc        domain.MeetingService
	store      *memory.Store
	notifier   *recordingNotifier
	dispatcher *NotificationDispatcher
}

var testTiers = domain.TierTable{
	"standard": {MaxRequests: 3, MaxBoost: 0},
	"vip":      {MaxRequests: 10, MaxBoost: 20},
}

func newMeetingFixture(t *testing.T) *meetingFixture {
	t.Helper()
	store := memory.NewStore()
	for _, id := range []string{"req-1", "req-2", "req-3"} {
		store.PutTicket(&domain.Ticket{UserID: id, Tier: "standard", Verified: true})
		store.PutUser(&domain.User{ID: id, Email: id + "@example.com"})
	}
	store.PutUser(&domain.User{ID: "spk-1", Email: "spk-1@example.com"})
	store.PutUser(&domain.User{ID: "spk-2", Email: "spk-2@example.com"})

	notifier := &recordingNotifier{}
	dispatcher := NewNotificationDispatcher(discardLogger(), notifier, store.Users(), time.Second)
	svc := NewMeetingService(discardLogger(), store.MeetingRequests(), store.Tickets(), testTiers, scheduling.DefaultDurationBounds, dispatcher)
	return &meetingFixture{svc: svc, store: store, notifier: notifier, dispatcher: dispatcher}
}

var baseStart = time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC)

func candidate(speaker, requester string, start time.Time, minutes int) domain.MeetingCandidate {
	return domain.MeetingCandidate{
		SpeakerID:   speaker,
		RequesterID: requester,
		StartAt:     start,
		EndAt:       start.Add(time.Duration(minutes) * time.Minute),
	}
}

func conflictReason(t *testing.T, err error) domain.ConflictReason {
	t.Helper()
	var ce *domain.ConflictError
	require.True(t, errors.As(err, &ce), "expected ConflictError, got %v", err)
	return ce.Reason
}

func TestMeetingService_Create(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)

	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "", baseStart, 15))
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "req-1", m.RequesterID)
	assert.Equal(t, domain.MeetingRequested, m.Status)
	assert.Equal(t, domain.MeetingInPerson, m.MeetingType)

	f.dispatcher.Close()
	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.MeetingStatus(""), events[0].OldStatus)
	assert.Equal(t, domain.MeetingRequested, events[0].NewStatus)
	assert.Equal(t, "spk-1@example.com", events[0].RecipientEmail)
}

func TestMeetingService_Create_DurationBounds(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		minutes int
		wantErr bool
	}{
		{4, true},
		{5, false},
		{30, false},
		{31, true},
	}
	for _, tt := range tests {
		f := newMeetingFixture(t)
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, tt.minutes))
		if !tt.wantErr {
			require.NoError(t, err, "%d minutes", tt.minutes)
			continue
		}
		require.ErrorIs(t, err, domain.ErrInvalidInput, "%d minutes", tt.minutes)
		assert.Equal(t, domain.ConflictInvalidDuration, conflictReason(t, err))
	}
}

func TestMeetingService_Create_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)

	t.Run("slot already booked", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-1", "req-2", baseStart, 15))
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.ConflictSlotAlreadyBooked, conflictReason(t, err))
	})
	t.Run("one second later is another slot", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-1", "req-2", baseStart.Add(time.Second), 15))
		require.NoError(t, err)
	})
	t.Run("requester overlaps with another speaker", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-2", "req-1", baseStart.Add(5*time.Minute), 15))
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, domain.ConflictRequester, conflictReason(t, err))
	})
	t.Run("unverified ticket", func(t *testing.T) {
		f.store.PutTicket(&domain.Ticket{UserID: "req-3", Tier: "standard", Verified: false})
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-3"), candidate("spk-2", "req-3", baseStart, 15))
		require.ErrorIs(t, err, domain.ErrTicketNotVerified)
	})
	t.Run("no ticket", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("walk-in"), candidate("spk-2", "walk-in", baseStart, 15))
		require.ErrorIs(t, err, domain.ErrTicketNotVerified)
	})
	t.Run("booking yourself", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("spk-1"), candidate("spk-1", "spk-1", baseStart.Add(time.Hour), 15))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("on behalf of someone else", func(t *testing.T) {
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-2", "req-3", baseStart.Add(time.Hour), 15))
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("bad meeting type", func(t *testing.T) {
		c := candidate("spk-2", "req-2", baseStart.Add(2*time.Hour), 15)
		c.MeetingType = "telepathy"
		_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), c)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMeetingService_Create_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	requesters := []string{"req-1", "req-2", "req-3"}
	for i := 4; i <= 20; i++ {
		id := "req-x" + string(rune('a'+i))
		f.store.PutTicket(&domain.Ticket{UserID: id, Tier: "standard", Verified: true})
		requesters = append(requesters, id)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	start := make(chan struct{})
	for _, id := range requesters {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			<-start
			_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor(id), candidate("spk-1", id, baseStart, 15))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, len(requesters)-1, conflicts)

	speakerMeetings, total, err := f.svc.ListMyMeetingRequests(ctx, domain.NewActor("spk-1"), domain.RoleSpeaker, nil, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, speakerMeetings, 1)
}

// raceCreates fires one create per candidate for actor at the same moment and returns the errors.
func raceCreates(t *testing.T, svc domain.MeetingService, actor domain.Actor, cands []domain.MeetingCandidate) []error {
	t.Helper()
	errs := make([]error, len(cands))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, c := range cands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateMeetingRequest(context.Background(), actor, c)
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func TestMeetingService_Create_ConcurrentQuota(t *testing.T) {
	f := newMeetingFixture(t)
	var cands []domain.MeetingCandidate
	for i := range 10 {
		speaker := "spk-" + string(rune('a'+i))
		cands = append(cands, candidate(speaker, "req-1", baseStart.Add(time.Duration(i)*time.Hour), 15))
	}

	created, exceeded := 0, 0
	for _, err := range raceCreates(t, f.svc, domain.NewActor("req-1"), cands) {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrQuotaExceeded):
			exceeded++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, testTiers["standard"].MaxRequests, created)
	assert.Equal(t, len(cands)-created, exceeded)

	q, err := f.svc.ComputeQuota(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, 3, q.TotalRequests)
	assert.Zero(t, q.RemainingRequests)
}

func TestMeetingService_Create_ConcurrentRequesterOverlap(t *testing.T) {
	f := newMeetingFixture(t)
	var cands []domain.MeetingCandidate
	for i := range 10 {
		speaker := "spk-" + string(rune('a'+i))
		cands = append(cands, candidate(speaker, "req-1", baseStart.Add(time.Duration(i)*time.Minute), 15))
	}

	created, overlapping := 0, 0
	for _, err := range raceCreates(t, f.svc, domain.NewActor("req-1"), cands) {
		if err == nil {
			created++
			continue
		}
		var ce *domain.ConflictError
		if errors.As(err, &ce) && ce.Reason == domain.ConflictRequester {
			overlapping++
			continue
		}
		t.Errorf("unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, len(cands)-1, overlapping)

	mine, total, err := f.svc.ListMyMeetingRequests(context.Background(), domain.NewActor("req-1"), domain.RoleRequester, nil, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, mine, 1)
}

func TestMeetingService_Quota(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	actor := domain.NewActor("req-1")

	var ids []string
	prev := 3
	for i := 0; i < 3; i++ {
		m, err := f.svc.CreateMeetingRequest(ctx, actor, candidate("spk-"+string(rune('a'+i)), "req-1", baseStart.Add(time.Duration(i)*time.Hour), 15))
		require.NoError(t, err)
		ids = append(ids, m.ID)

		q, err := f.svc.ComputeQuota(ctx, "req-1")
		require.NoError(t, err)
		assert.LessOrEqual(t, q.RemainingRequests, prev)
		prev = q.RemainingRequests
	}
	assert.Equal(t, 0, prev)

	_, err := f.svc.CreateMeetingRequest(ctx, actor, candidate("spk-z", "req-1", baseStart.Add(5*time.Hour), 15))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)

	_, err = f.svc.TransitionMeetingRequest(ctx, actor, ids[0], domain.MeetingCancelled)
	require.NoError(t, err)

	q, err := f.svc.ComputeQuota(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, q.RemainingRequests)
	assert.Equal(t, 2, q.TotalRequests)

	_, err = f.svc.CreateMeetingRequest(ctx, actor, candidate("spk-z", "req-1", baseStart.Add(5*time.Hour), 15))
	require.NoError(t, err)
}

func TestMeetingService_Quota_RejectedStillCounts(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)
	_, err = f.svc.TransitionMeetingRequest(ctx, domain.NewActor("spk-1"), m.ID, domain.MeetingRejected)
	require.NoError(t, err)

	q, err := f.svc.ComputeQuota(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 1, q.TotalRequests)
	assert.Equal(t, 2, q.RemainingRequests)
}

func TestMeetingService_Boost(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	f.store.PutTicket(&domain.Ticket{UserID: "req-1", Tier: "vip", Verified: true})
	actor := domain.NewActor("req-1")

	c := candidate("spk-1", "req-1", baseStart, 15)
	c.BoostAmount = 15
	_, err := f.svc.CreateMeetingRequest(ctx, actor, c)
	require.NoError(t, err)

	c = candidate("spk-2", "req-1", baseStart.Add(time.Hour), 15)
	c.BoostAmount = 6
	_, err = f.svc.CreateMeetingRequest(ctx, actor, c)
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)

	c.BoostAmount = 5
	_, err = f.svc.CreateMeetingRequest(ctx, actor, c)
	require.NoError(t, err)

	q, err := f.svc.ComputeQuota(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 0, q.RemainingBoost)
	assert.Equal(t, 20, q.UsedBoost)

	// Standard tier has no boost budget at all.
	c = candidate("spk-1", "req-2", baseStart.Add(2*time.Hour), 15)
	c.BoostAmount = 1
	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), c)
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestMeetingService_Transition(t *testing.T) {
	ctx := context.Background()
	speaker := domain.NewActor("spk-1")
	requester := domain.NewActor("req-1")
	admin := domain.NewActor("ops", domain.RoleAdmin)
	stranger := domain.NewActor("someone")

	tests := []struct {
		name    string
		actor   domain.Actor
		to      domain.MeetingStatus
		wantErr error
	}{
		{"speaker accepts", speaker, domain.MeetingAccepted, nil},
		{"speaker rejects", speaker, domain.MeetingRejected, nil},
		{"requester cancels", requester, domain.MeetingCancelled, nil},
		{"admin cancels", admin, domain.MeetingCancelled, nil},
		{"requester cannot accept", requester, domain.MeetingAccepted, domain.ErrForbidden},
		{"requester cannot reject", requester, domain.MeetingRejected, domain.ErrForbidden},
		{"speaker cannot cancel", speaker, domain.MeetingCancelled, domain.ErrForbidden},
		{"admin cannot accept", admin, domain.MeetingAccepted, domain.ErrForbidden},
		{"stranger", stranger, domain.MeetingCancelled, domain.ErrForbidden},
		{"back to requested", speaker, domain.MeetingRequested, domain.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMeetingFixture(t)
			m, err := f.svc.CreateMeetingRequest(ctx, requester, candidate("spk-1", "req-1", baseStart, 15))
			require.NoError(t, err)

			got, err := f.svc.TransitionMeetingRequest(ctx, tt.actor, m.ID, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored, err := f.svc.GetMeetingRequest(ctx, requester, m.ID)
				require.NoError(t, err)
				assert.Equal(t, domain.MeetingRequested, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.NotNil(t, got.RespondedAt)
		})
	}
}

func TestMeetingService_Transition_TerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	speaker := domain.NewActor("spk-1")
	requester := domain.NewActor("req-1")

	for _, terminal := range []domain.MeetingStatus{domain.MeetingAccepted, domain.MeetingRejected, domain.MeetingCancelled} {
		t.Run(string(terminal), func(t *testing.T) {
			f := newMeetingFixture(t)
			m, err := f.svc.CreateMeetingRequest(ctx, requester, candidate("spk-1", "req-1", baseStart, 15))
			require.NoError(t, err)
			actor := speaker
			if terminal == domain.MeetingCancelled {
				actor = requester
			}
			_, err = f.svc.TransitionMeetingRequest(ctx, actor, m.ID, terminal)
			require.NoError(t, err)

			for _, next := range []domain.MeetingStatus{domain.MeetingAccepted, domain.MeetingRejected, domain.MeetingCancelled, domain.MeetingRequested} {
				for _, a := range []domain.Actor{speaker, requester} {
					_, err := f.svc.TransitionMeetingRequest(ctx, a, m.ID, next)
					require.ErrorIs(t, err, domain.ErrInvalidTransition)
				}
			}
			stored, err := f.svc.GetMeetingRequest(ctx, speaker, m.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, stored.Status)
		})
	}
}

func TestMeetingService_Transition_NotFound(t *testing.T) {
	f := newMeetingFixture(t)
	_, err := f.svc.TransitionMeetingRequest(context.Background(), domain.NewActor("spk-1"), "missing", domain.MeetingAccepted)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMeetingService_Transition_FreesSlotForOthers(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)
	_, err = f.svc.TransitionMeetingRequest(ctx, domain.NewActor("spk-1"), m.ID, domain.MeetingRejected)
	require.NoError(t, err)

	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-1", "req-2", baseStart, 15))
	require.NoError(t, err)
}

func TestMeetingService_AcceptBooksSlot(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	created, err := f.store.Slots().UpsertMany(ctx, []*domain.Slot{domain.NewSlot("spk-1", baseStart, baseStart.Add(10*time.Minute), time.Now())})
	require.NoError(t, err)
	require.Equal(t, 1, created)

	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 10))
	require.NoError(t, err)
	_, err = f.svc.TransitionMeetingRequest(ctx, domain.NewActor("spk-1"), m.ID, domain.MeetingAccepted)
	require.NoError(t, err)

	available, err := f.store.Slots().ListAvailable(ctx, "spk-1", baseStart.Add(-time.Hour), baseStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestMeetingService_NotificationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	f.notifier.err = errors.New("smtp down")

	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)
	got, err := f.svc.TransitionMeetingRequest(ctx, domain.NewActor("spk-1"), m.ID, domain.MeetingAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingAccepted, got.Status)

	f.dispatcher.Close()
	events := f.notifier.Events()
	require.Len(t, events, 2)
	var accepted *domain.MeetingStatusChanged
	for i := range events {
		if events[i].NewStatus == domain.MeetingAccepted {
			accepted = &events[i]
		}
	}
	require.NotNil(t, accepted)
	assert.Equal(t, domain.MeetingRequested, accepted.OldStatus)
	assert.Equal(t, "req-1@example.com", accepted.RecipientEmail)
}

func TestMeetingService_CheckMeetingRequest(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	reason, err := f.svc.CheckMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "", baseStart, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.ConflictNone, reason)

	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)

	reason, err = f.svc.CheckMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-1", "req-2", baseStart, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.ConflictSlotAlreadyBooked, reason)

	// Checking twice changes nothing.
	reason, err = f.svc.CheckMeetingRequest(ctx, domain.NewActor("req-2"), candidate("spk-1", "req-2", baseStart, 15))
	require.NoError(t, err)
	assert.Equal(t, domain.ConflictSlotAlreadyBooked, reason)
}

func TestMeetingService_CheckMeetingRequest_OtherRequester(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	_, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)
	elsewhere := candidate("spk-2", "req-1", baseStart.Add(5*time.Minute), 15)

	_, err = f.svc.CheckMeetingRequest(ctx, domain.NewActor("outsider"), elsewhere)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.CheckMeetingRequest(ctx, domain.NewActor("outsider"), candidate("spk-2", "nobody", baseStart, 15))
	require.ErrorIs(t, err, domain.ErrForbidden)

	reason, err := f.svc.CheckMeetingRequest(ctx, domain.NewActor("ops", domain.RoleAdmin), elsewhere)
	require.NoError(t, err)
	assert.Equal(t, domain.ConflictRequester, reason)
}

func TestMeetingService_Create_BlockedSlot(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	slots := f.store.Slots()
	_, err := slots.UpsertMany(ctx, []*domain.Slot{
		domain.NewSlot("spk-1", baseStart, baseStart.Add(10*time.Minute), baseStart),
		domain.NewSlot("spk-1", baseStart.Add(10*time.Minute), baseStart.Add(20*time.Minute), baseStart),
	})
	require.NoError(t, err)
	_, err = slots.SetStatus(ctx, "spk-1", baseStart, domain.SlotAvailable, domain.SlotUnavailable)
	require.NoError(t, err)

	reason, err := f.svc.CheckMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.ConflictSlotAlreadyBooked, reason)

	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 10))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.ConflictSlotAlreadyBooked, conflictReason(t, err))

	// Starting inside the blocked slot is refused too.
	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart.Add(5*time.Minute), 10))
	assert.Equal(t, domain.ConflictSlotAlreadyBooked, conflictReason(t, err))

	m, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart.Add(10*time.Minute), 10))
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingRequested, m.Status)
}

func TestMeetingService_GetAndList(t *testing.T) {
	ctx := context.Background()
	f := newMeetingFixture(t)
	m1, err := f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-1", "req-1", baseStart, 15))
	require.NoError(t, err)
	_, err = f.svc.CreateMeetingRequest(ctx, domain.NewActor("req-1"), candidate("spk-2", "req-1", baseStart.Add(time.Hour), 15))
	require.NoError(t, err)
	_, err = f.svc.TransitionMeetingRequest(ctx, domain.NewActor("spk-1"), m1.ID, domain.MeetingAccepted)
	require.NoError(t, err)

	_, err = f.svc.GetMeetingRequest(ctx, domain.NewActor("someone"), m1.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.GetMeetingRequest(ctx, domain.NewActor("req-1"), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	items, total, err := f.svc.ListMyMeetingRequests(ctx, domain.NewActor("req-1"), "", nil, domain.PaginationParams{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, m1.ID, items[0].ID)

	accepted, total, err := f.svc.ListMyMeetingRequests(ctx, domain.NewActor("spk-1"), domain.RoleSpeaker, []domain.MeetingStatus{domain.MeetingAccepted}, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, accepted, 1)

	_, _, err = f.svc.ListMyMeetingRequests(ctx, domain.NewActor("req-1"), "judge", nil, domain.PaginationParams{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
