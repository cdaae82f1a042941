package domain

import (
	"context"
	"time"
)

// MeetingStatus is the lifecycle state of a meeting request.
type MeetingStatus string

const (
	MeetingRequested MeetingStatus = "requested"
	MeetingAccepted  MeetingStatus = "accepted"
	MeetingRejected  MeetingStatus = "rejected"
	MeetingCancelled MeetingStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingAccepted || s == MeetingRejected || s == MeetingCancelled
}

// IsActive reports whether a request in status s holds its time slot.
func (s MeetingStatus) IsActive() bool {
	return s == MeetingRequested || s == MeetingAccepted
}

// Valid reports whether s is a known status.
func (s MeetingStatus) Valid() bool {
	return s == MeetingRequested || s.IsTerminal()
}

// MeetingType is how the meeting takes place.
type MeetingType string

const (
	MeetingInPerson MeetingType = "in_person"
	MeetingVirtual  MeetingType = "virtual"
)

// ParticipantRole is the part an actor plays in a meeting request.
type ParticipantRole string

const (
	RoleSpeaker   ParticipantRole = "speaker"
	RoleRequester ParticipantRole = "requester"
)

// MeetingRequest is a requester's claim on a speaker's time.
// swagger:model MeetingRequest
type MeetingRequest struct {
	ID          string        `json:"id"`
	SpeakerID   string        `json:"speaker_id"`
	RequesterID string        `json:"requester_id"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       time.Time     `json:"end_at"`
	Status      MeetingStatus `json:"status"`
	MeetingType MeetingType   `json:"meeting_type"`
	BoostAmount int           `json:"boost_amount"`
	Message     string        `json:"message"`
	RespondedAt *time.Time    `json:"responded_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overlaps reports whether the request's [StartAt, EndAt) intersects [start, end).
func (m *MeetingRequest) Overlaps(start, end time.Time) bool {
	return m.StartAt.Before(end) && start.Before(m.EndAt)
}

// MeetingCandidate is a not-yet-persisted meeting request.
type MeetingCandidate struct {
	SpeakerID   string
	RequesterID string
	StartAt     time.Time
	EndAt       time.Time
	MeetingType MeetingType
	BoostAmount int
	Message     string
}

// NewMeetingRequest builds a requested MeetingRequest from c. Times are normalized to UTC.
func NewMeetingRequest(c MeetingCandidate, createdAt time.Time) *MeetingRequest {
	meetingType := c.MeetingType
	if meetingType == "" {
		meetingType = MeetingInPerson
	}
	return &MeetingRequest{
		SpeakerID:   c.SpeakerID,
		RequesterID: c.RequesterID,
		StartAt:     c.StartAt.UTC(),
		EndAt:       c.EndAt.UTC(),
		Status:      MeetingRequested,
		MeetingType: meetingType,
		BoostAmount: c.BoostAmount,
		Message:     c.Message,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// BookingSnapshot is the stored state a booking decision depends on.
type BookingSnapshot struct {
	// SpeakerAtStart holds the speaker's active requests starting exactly at the candidate start.
	SpeakerAtStart []*MeetingRequest
	// RequesterBookings holds every request ever made by the requester, in any status.
	RequesterBookings []*MeetingRequest
	// BlockedSlots holds the speaker's unavailable slots intersecting the candidate interval.
	BlockedSlots []*Slot
}

// BookingGuard decides, against a snapshot, whether a request may be inserted.
// A non-nil error aborts the insert and is returned to the caller unchanged.
type BookingGuard func(snap *BookingSnapshot) error

// MeetingRequestFilter narrows ListByParticipant.
type MeetingRequestFilter struct {
	UserID   string
	Role     ParticipantRole
	Statuses []MeetingStatus
	Page     PaginationParams
}

// MeetingRequestRepository stores meeting requests. Rows are never deleted.
type MeetingRequestRepository interface {
	// Snapshot reads the booking state for a candidate without locking.
	Snapshot(ctx context.Context, speakerID, requesterID string, startAt, endAt time.Time) (*BookingSnapshot, error)
	// CreateGuarded atomically takes a snapshot, runs guard and inserts req.
	// No other CreateGuarded for the same speaker or requester may interleave.
	// A storage-level double booking surfaces as a ConflictError with ConflictSlotAlreadyBooked.
	CreateGuarded(ctx context.Context, req *MeetingRequest, guard BookingGuard) error
	GetByID(ctx context.Context, id string) (*MeetingRequest, error)
	// UpdateStatus sets status to `to` only when it currently equals `from`.
	// Accepting a request also marks the speaker's slot at the same start as booked.
	// Returns ErrNotFound for an unknown id and ErrInvalidTransition when the status no longer matches.
	UpdateStatus(ctx context.Context, id string, from, to MeetingStatus, at time.Time) (*MeetingRequest, error)
	ListByParticipant(ctx context.Context, filter MeetingRequestFilter) ([]*MeetingRequest, int, error)
}

// MeetingService is the booking state machine plus quota and conflict queries.
type MeetingService interface {
	// CheckMeetingRequest runs the conflict check without writing. Like CreateMeetingRequest,
	// it answers ErrForbidden when a non-admin actor asks about another requester.
	CheckMeetingRequest(ctx context.Context, actor Actor, c MeetingCandidate) (ConflictReason, error)
	CreateMeetingRequest(ctx context.Context, actor Actor, c MeetingCandidate) (*MeetingRequest, error)
	TransitionMeetingRequest(ctx context.Context, actor Actor, id string, to MeetingStatus) (*MeetingRequest, error)
	GetMeetingRequest(ctx context.Context, actor Actor, id string) (*MeetingRequest, error)
	ListMyMeetingRequests(ctx context.Context, actor Actor, role ParticipantRole, statuses []MeetingStatus, page PaginationParams) ([]*MeetingRequest, int, error)
	ComputeQuota(ctx context.Context, requesterID string) (*QuotaState, error)
}
