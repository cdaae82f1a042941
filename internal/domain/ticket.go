package domain

import (
	"context"
	"time"
)

// DefaultTier is used for quota limits when a requester's tier is unknown.
const DefaultTier = "standard"

// Ticket is an attendee's event pass.
// swagger:model Ticket
type Ticket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Tier      string    `json:"tier"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketRepository reads attendees' tickets.
type TicketRepository interface {
	// GetByUserID returns ErrNotFound when the user holds no ticket.
	GetByUserID(ctx context.Context, userID string) (*Ticket, error)
}

// TierLimits is the static quota allowance of a ticket tier.
type TierLimits struct {
	MaxRequests int `json:"max_requests"`
	MaxBoost    int `json:"max_boost"`
}

// TierLimitProvider resolves a tier to its limits.
type TierLimitProvider interface {
	LimitsFor(tier string) TierLimits
}

// TierTable is a TierLimitProvider backed by a map. Unknown tiers fall back to DefaultTier.
type TierTable map[string]TierLimits

// LimitsFor implements TierLimitProvider.
func (t TierTable) LimitsFor(tier string) TierLimits {
	if l, ok := t[tier]; ok {
		return l
	}
	return t[DefaultTier]
}

// QuotaState is a requester's meeting-request allowance derived from their bookings.
// swagger:model QuotaState
type QuotaState struct {
	Tier              string `json:"tier"`
	MaxRequests       int    `json:"max_requests"`
	TotalRequests     int    `json:"total_requests"`
	RemainingRequests int    `json:"remaining_requests"`
	MaxBoost          int    `json:"max_boost"`
	UsedBoost         int    `json:"used_boost"`
	RemainingBoost    int    `json:"remaining_boost"`
}

// Allows reports whether one more request with the given boost fits in the quota.
func (q QuotaState) Allows(boost int) bool {
	if q.RemainingRequests <= 0 {
		return false
	}
	return boost <= 0 || q.RemainingBoost >= boost
}
