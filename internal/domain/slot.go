package domain

import (
	"context"
	"time"
)

// SlotStatus is the lifecycle state of a slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
)

// Slot is a concrete bookable interval for one speaker.
// swagger:model Slot
type Slot struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     time.Time  `json:"end_at"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewSlot returns an available Slot. ID is set by the repository on create.
func NewSlot(ownerID string, startAt, endAt, createdAt time.Time) *Slot {
	return &Slot{
		OwnerID:   ownerID,
		StartAt:   startAt.UTC(),
		EndAt:     endAt.UTC(),
		Status:    SlotAvailable,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Overlaps reports whether the slot's [StartAt, EndAt) intersects [start, end).
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && start.Before(s.EndAt)
}

// SlotRepository stores generated slots. (owner_id, start_at) is unique and the slots
// of one owner never overlap.
type SlotRepository interface {
	// UpsertMany inserts slots that do not exist yet and returns how many were created.
	// Existing slots, whatever their status, are left untouched. A slot overlapping an
	// existing slot of the same owner is skipped.
	UpsertMany(ctx context.Context, slots []*Slot) (int, error)
	ListAvailable(ctx context.Context, ownerID string, from, to time.Time) ([]*Slot, error)
	// SetStatus moves the slot at (ownerID, startAt) from one status to another.
	// Returns ErrNotFound when no slot with that key and status exists.
	SetStatus(ctx context.Context, ownerID string, startAt time.Time, from, to SlotStatus) (*Slot, error)
}

// SlotService materializes and queries slots.
type SlotService interface {
	GenerateWeeklySlots(ctx context.Context, actor Actor, ownerID string, startDate time.Time) (int, error)
	ListAvailableSlots(ctx context.Context, ownerID string, from, to time.Time) ([]*Slot, error)
	BlockSlot(ctx context.Context, actor Actor, ownerID string, startAt time.Time) (*Slot, error)
}
