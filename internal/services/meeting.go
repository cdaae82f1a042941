package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/scheduling"
)

// MaxMessageLength caps the free-text note attached to a meeting request.
const MaxMessageLength = 1000

type meetingService struct {
	logger     *slog.Logger
	meetings   domain.MeetingRequestRepository
	tickets    domain.TicketRepository
	tiers      domain.TierLimitProvider
	checker    *scheduling.ConflictChecker
	dispatcher *NotificationDispatcher
	now        func() time.Time
}

// NewMeetingService creates the booking state machine. dispatcher may be nil to disable notifications.
func NewMeetingService(
	logger *slog.Logger,
	meetings domain.MeetingRequestRepository,
	tickets domain.TicketRepository,
	tiers domain.TierLimitProvider,
	bounds scheduling.DurationBounds,
	dispatcher *NotificationDispatcher,
) domain.MeetingService {
	return &meetingService{
		logger:     logger,
		meetings:   meetings,
		tickets:    tickets,
		tiers:      tiers,
		checker:    scheduling.NewConflictChecker(bounds),
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

func validateCandidate(c *domain.MeetingCandidate) error {
	var problems []string
	if c.SpeakerID == "" {
		problems = append(problems, "speaker_id is required")
	}
	if c.RequesterID == "" {
		problems = append(problems, "requester_id is required")
	}
	if c.SpeakerID != "" && c.SpeakerID == c.RequesterID {
		problems = append(problems, "cannot request a meeting with yourself")
	}
	if c.StartAt.IsZero() || c.EndAt.IsZero() {
		problems = append(problems, "start and end are required")
	}
	switch c.MeetingType {
	case "":
		c.MeetingType = domain.MeetingInPerson
	case domain.MeetingInPerson, domain.MeetingVirtual:
	default:
		problems = append(problems, fmt.Sprintf("unknown meeting_type %q", c.MeetingType))
	}
	if c.BoostAmount < 0 {
		problems = append(problems, "boost_amount must not be negative")
	}
	if utf8.RuneCountInString(c.Message) > MaxMessageLength {
		problems = append(problems, fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, problems)
	}
	c.StartAt = c.StartAt.UTC()
	c.EndAt = c.EndAt.UTC()
	return nil
}

// ticketFor returns the requester's ticket, or nil when they hold none.
func (s *meetingService) ticketFor(ctx context.Context, userID string) (*domain.Ticket, error) {
	t, err := s.tickets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func tierOf(t *domain.Ticket) string {
	if t == nil || t.Tier == "" {
		return domain.DefaultTier
	}
	return t.Tier
}

// actAsRequester defaults the requester to the actor. Only an admin may act for someone else.
func actAsRequester(actor domain.Actor, c *domain.MeetingCandidate) error {
	if c.RequesterID == "" {
		c.RequesterID = actor.UserID
	}
	if c.RequesterID != actor.UserID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *meetingService) CheckMeetingRequest(ctx context.Context, actor domain.Actor, c domain.MeetingCandidate) (domain.ConflictReason, error) {
	if err := actAsRequester(actor, &c); err != nil {
		return "", err
	}
	if err := validateCandidate(&c); err != nil {
		return "", err
	}
	ticket, err := s.ticketFor(ctx, c.RequesterID)
	if err != nil {
		return "", err
	}
	snap, err := s.meetings.Snapshot(ctx, c.SpeakerID, c.RequesterID, c.StartAt, c.EndAt)
	if err != nil {
		return "", fmt.Errorf("read booking snapshot: %w", err)
	}
	return s.checker.Check(c, snap, ticket), nil
}

// CreateMeetingRequest is the only way a meeting request comes into existence. The conflict
// check, the quota check and the insert run as one atomic storage operation.
func (s *meetingService) CreateMeetingRequest(ctx context.Context, actor domain.Actor, c domain.MeetingCandidate) (*domain.MeetingRequest, error) {
	if err := actAsRequester(actor, &c); err != nil {
		return nil, err
	}
	if err := validateCandidate(&c); err != nil {
		return nil, err
	}
	ticket, err := s.ticketFor(ctx, c.RequesterID)
	if err != nil {
		return nil, err
	}
	tier := tierOf(ticket)
	limits := s.tiers.LimitsFor(tier)

	req := domain.NewMeetingRequest(c, s.now())
	guard := func(snap *domain.BookingSnapshot) error {
		if reason := s.checker.Check(c, snap, ticket); reason != domain.ConflictNone {
			return domain.NewConflictError(reason)
		}
		q := scheduling.ComputeQuota(c.RequesterID, tier, limits, snap.RequesterBookings)
		if !q.Allows(c.BoostAmount) {
			return fmt.Errorf("%w: %d of %d requests used, %d boost left", domain.ErrQuotaExceeded, q.TotalRequests, q.MaxRequests, q.RemainingBoost)
		}
		return nil
	}
	if err := s.meetings.CreateGuarded(ctx, req, guard); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) || errors.Is(err, domain.ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("create meeting request: %w", err)
	}

	s.logger.InfoContext(ctx, "meeting request created",
		"meeting_request_id", req.ID,
		"speaker_id", req.SpeakerID,
		"requester_id", req.RequesterID,
		"start_at", req.StartAt,
		"boost_amount", req.BoostAmount,
	)
	s.dispatcher.Dispatch(req, "")
	return req, nil
}

func (s *meetingService) TransitionMeetingRequest(ctx context.Context, actor domain.Actor, id string, to domain.MeetingStatus) (*domain.MeetingRequest, error) {
	current, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting request: %w", err)
	}
	if !scheduling.CanView(actor, current) {
		return nil, domain.ErrForbidden
	}
	if err := scheduling.ValidateTransition(current.Status, to, scheduling.ActorRoles(actor, current)); err != nil {
		return nil, err
	}

	updated, err := s.meetings.UpdateStatus(ctx, id, domain.MeetingRequested, to, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update meeting request status: %w", err)
	}

	s.logger.InfoContext(ctx, "meeting request status changed",
		"meeting_request_id", id,
		"actor_id", actor.UserID,
		"old_status", current.Status,
		"new_status", updated.Status,
	)
	s.dispatcher.Dispatch(updated, current.Status)
	return updated, nil
}

func (s *meetingService) GetMeetingRequest(ctx context.Context, actor domain.Actor, id string) (*domain.MeetingRequest, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting request: %w", err)
	}
	if !scheduling.CanView(actor, m) {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

func (s *meetingService) ListMyMeetingRequests(ctx context.Context, actor domain.Actor, role domain.ParticipantRole, statuses []domain.MeetingStatus, page domain.PaginationParams) ([]*domain.MeetingRequest, int, error) {
	if role == "" {
		role = domain.RoleRequester
	}
	if role != domain.RoleRequester && role != domain.RoleSpeaker {
		return nil, 0, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, st)
		}
	}
	items, total, err := s.meetings.ListByParticipant(ctx, domain.MeetingRequestFilter{
		UserID:   actor.UserID,
		Role:     role,
		Statuses: statuses,
		Page:     page,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list meeting requests: %w", err)
	}
	if items == nil {
		items = []*domain.MeetingRequest{}
	}
	return items, total, nil
}

// ComputeQuota recomputes the requester's quota from their stored meeting requests.
func (s *meetingService) ComputeQuota(ctx context.Context, requesterID string) (*domain.QuotaState, error) {
	ticket, err := s.ticketFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	bookings, _, err := s.meetings.ListByParticipant(ctx, domain.MeetingRequestFilter{
		UserID: requesterID,
		Role:   domain.RoleRequester,
	})
	if err != nil {
		return nil, fmt.Errorf("list meeting requests: %w", err)
	}
	tier := tierOf(ticket)
	q := scheduling.ComputeQuota(requesterID, tier, s.tiers.LimitsFor(tier), bookings)
	return &q, nil
}
