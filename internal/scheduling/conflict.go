package scheduling

import (
	"time"

	"meetingscheduler/internal/domain"
)

// DurationBounds is the inclusive range a meeting's length must fall in.
type DurationBounds struct {
	Min time.Duration
	Max time.Duration
}

// DefaultDurationBounds allows meetings of 5 to 30 minutes.
var DefaultDurationBounds = DurationBounds{Min: 5 * time.Minute, Max: 30 * time.Minute}

// Contains reports whether d lies within the bounds.
func (b DurationBounds) Contains(d time.Duration) bool {
	return d > 0 && d >= b.Min && d <= b.Max
}

// ConflictChecker decides whether a candidate meeting request may proceed to booking.
// It has no side effects.
type ConflictChecker struct {
	Bounds DurationBounds
}

// NewConflictChecker returns a checker using bounds.
func NewConflictChecker(bounds DurationBounds) *ConflictChecker {
	return &ConflictChecker{Bounds: bounds}
}

// Check applies, in order: the duration bound, the speaker double-booking guard,
// the requester overlap guard and the ticket precondition. A slot the speaker blocked
// counts as booked for any candidate intersecting it.
// Start times of requests are compared for exact equality; no tolerance is applied.
func (c *ConflictChecker) Check(cand domain.MeetingCandidate, snap *domain.BookingSnapshot, ticket *domain.Ticket) domain.ConflictReason {
	if !c.Bounds.Contains(cand.EndAt.Sub(cand.StartAt)) {
		return domain.ConflictInvalidDuration
	}
	if snap != nil {
		for _, m := range snap.SpeakerAtStart {
			if m.SpeakerID == cand.SpeakerID && m.Status.IsActive() && m.StartAt.Equal(cand.StartAt) {
				return domain.ConflictSlotAlreadyBooked
			}
		}
		for _, sl := range snap.BlockedSlots {
			if sl.OwnerID == cand.SpeakerID && sl.Status == domain.SlotUnavailable && sl.Overlaps(cand.StartAt, cand.EndAt) {
				return domain.ConflictSlotAlreadyBooked
			}
		}
		for _, m := range snap.RequesterBookings {
			if m.RequesterID == cand.RequesterID && m.Status.IsActive() && m.Overlaps(cand.StartAt, cand.EndAt) {
				return domain.ConflictRequester
			}
		}
	}
	if ticket == nil || !ticket.Verified {
		return domain.ConflictTicketNotVerified
	}
	return domain.ConflictNone
}
