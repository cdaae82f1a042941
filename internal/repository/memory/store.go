// Package memory is a process-local implementation of the repositories, used for
// development (STORAGE=memory) and tests. A single mutex serializes every
// operation, which gives CreateGuarded and UpdateStatus their atomicity.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"meetingscheduler/internal/domain"

	"github.com/google/uuid"
)

type slotKey struct {
	ownerID string
	startAt int64
}

// Store holds all tables. Use the accessor methods to get repository views.
type Store struct {
	mu           sync.Mutex
	availability map[string]*domain.AvailabilityPattern
	slots        map[slotKey]*domain.Slot
	meetings     map[string]*domain.MeetingRequest
	tickets      map[string]*domain.Ticket
	users        map[string]*domain.User
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		availability: make(map[string]*domain.AvailabilityPattern),
		slots:        make(map[slotKey]*domain.Slot),
		meetings:     make(map[string]*domain.MeetingRequest),
		tickets:      make(map[string]*domain.Ticket),
		users:        make(map[string]*domain.User),
	}
}

// Availability returns the availability repository view.
func (s *Store) Availability() domain.AvailabilityRepository { return &availabilityRepo{s} }

// Slots returns the slot repository view.
func (s *Store) Slots() domain.SlotRepository { return &slotRepo{s} }

// MeetingRequests returns the meeting request repository view.
func (s *Store) MeetingRequests() domain.MeetingRequestRepository { return &meetingRepo{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() domain.TicketRepository { return &ticketRepo{s} }

// Users returns the user repository view.
func (s *Store) Users() domain.UserRepository { return &userRepo{s} }

// PutTicket stores or replaces the ticket of t.UserID.
func (s *Store) PutTicket(t *domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.tickets[c.UserID] = &c
}

// PutUser stores or replaces u.
func (s *Store) PutUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[c.ID] = &c
}

type availabilityRepo struct{ s *Store }

func clonePattern(p *domain.AvailabilityPattern) *domain.AvailabilityPattern {
	c := *p
	c.Days = make(map[time.Weekday]*domain.DayWindow, len(p.Days))
	for d, w := range p.Days {
		if w != nil {
			wc := *w
			c.Days[d] = &wc
		}
	}
	return &c
}

func (r *availabilityRepo) GetBySpeakerID(_ context.Context, speakerID string) (*domain.AvailabilityPattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.availability[speakerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clonePattern(p), nil
}

func (r *availabilityRepo) Upsert(_ context.Context, p *domain.AvailabilityPattern) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.availability[p.SpeakerID] = clonePattern(p)
	return nil
}

type slotRepo struct{ s *Store }

func (r *slotRepo) UpsertMany(_ context.Context, slots []*domain.Slot) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := 0
	for _, sl := range slots {
		key := slotKey{sl.OwnerID, sl.StartAt.UnixNano()}
		if existing, ok := r.s.slots[key]; ok {
			sl.ID = existing.ID
			continue
		}
		if r.overlapsLocked(sl) {
			continue
		}
		c := *sl
		c.ID = uuid.NewString()
		sl.ID = c.ID
		r.s.slots[key] = &c
		created++
	}
	return created, nil
}

// overlapsLocked reports whether sl intersects a stored slot of the same owner.
func (r *slotRepo) overlapsLocked(sl *domain.Slot) bool {
	for _, other := range r.s.slots {
		if other.OwnerID == sl.OwnerID && other.Overlaps(sl.StartAt, sl.EndAt) {
			return true
		}
	}
	return false
}

func (r *slotRepo) ListAvailable(_ context.Context, ownerID string, from, to time.Time) ([]*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Slot{}
	for _, sl := range r.s.slots {
		if sl.OwnerID != ownerID || sl.Status != domain.SlotAvailable {
			continue
		}
		if sl.StartAt.Before(from) || sl.EndAt.After(to) {
			continue
		}
		c := *sl
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *slotRepo) SetStatus(_ context.Context, ownerID string, startAt time.Time, from, to domain.SlotStatus) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slots[slotKey{ownerID, startAt.UnixNano()}]
	if !ok || sl.Status != from {
		return nil, domain.ErrNotFound
	}
	sl.Status = to
	sl.UpdatedAt = time.Now()
	c := *sl
	return &c, nil
}

type meetingRepo struct{ s *Store }

func cloneMeeting(m *domain.MeetingRequest) *domain.MeetingRequest {
	c := *m
	if m.RespondedAt != nil {
		t := *m.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}

// snapshotLocked must be called with the store mutex held.
func (r *meetingRepo) snapshotLocked(speakerID, requesterID string, startAt, endAt time.Time) *domain.BookingSnapshot {
	snap := &domain.BookingSnapshot{}
	for _, sl := range r.s.slots {
		if sl.OwnerID == speakerID && sl.Status == domain.SlotUnavailable && sl.Overlaps(startAt, endAt) {
			c := *sl
			snap.BlockedSlots = append(snap.BlockedSlots, &c)
		}
	}
	for _, m := range r.s.meetings {
		if m.SpeakerID == speakerID && m.StartAt.Equal(startAt) && m.Status.IsActive() {
			snap.SpeakerAtStart = append(snap.SpeakerAtStart, cloneMeeting(m))
		}
		if m.RequesterID == requesterID {
			snap.RequesterBookings = append(snap.RequesterBookings, cloneMeeting(m))
		}
	}
	return snap
}

func (r *meetingRepo) Snapshot(_ context.Context, speakerID, requesterID string, startAt, endAt time.Time) (*domain.BookingSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.snapshotLocked(speakerID, requesterID, startAt, endAt), nil
}

func (r *meetingRepo) CreateGuarded(ctx context.Context, req *domain.MeetingRequest, guard domain.BookingGuard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.snapshotLocked(req.SpeakerID, req.RequesterID, req.StartAt, req.EndAt)
	if guard != nil {
		if err := guard(snap); err != nil {
			return err
		}
	}
	// Same invariant as the partial unique index in Postgres, kept even without a guard.
	if len(snap.SpeakerAtStart) > 0 {
		return domain.NewConflictError(domain.ConflictSlotAlreadyBooked)
	}
	req.ID = uuid.NewString()
	r.s.meetings[req.ID] = cloneMeeting(req)
	return nil
}

func (r *meetingRepo) GetByID(_ context.Context, id string) (*domain.MeetingRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneMeeting(m), nil
}

func (r *meetingRepo) UpdateStatus(_ context.Context, id string, from, to domain.MeetingStatus, at time.Time) (*domain.MeetingRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	m.Status = to
	m.UpdatedAt = at
	responded := at
	m.RespondedAt = &responded
	if to == domain.MeetingAccepted {
		if sl, ok := r.s.slots[slotKey{m.SpeakerID, m.StartAt.UnixNano()}]; ok && sl.Status == domain.SlotAvailable {
			sl.Status = domain.SlotBooked
			sl.UpdatedAt = at
		}
	}
	return cloneMeeting(m), nil
}

func (r *meetingRepo) ListByParticipant(_ context.Context, f domain.MeetingRequestFilter) ([]*domain.MeetingRequest, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*domain.MeetingRequest
	for _, m := range r.s.meetings {
		owner := m.RequesterID
		if f.Role == domain.RoleSpeaker {
			owner = m.SpeakerID
		}
		if owner != f.UserID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, m.Status) {
			continue
		}
		all = append(all, cloneMeeting(m))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartAt.Equal(all[j].StartAt) {
			return all[i].StartAt.Before(all[j].StartAt)
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	lo, hi := f.Page.Window(len(all))
	return append([]*domain.MeetingRequest{}, all[lo:hi]...), len(all), nil
}

type ticketRepo struct{ s *Store }

func (r *ticketRepo) GetByUserID(_ context.Context, userID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}
