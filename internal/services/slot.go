package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/scheduling"
)

type slotService struct {
	logger       *slog.Logger
	availability domain.AvailabilityService
	slotRepo     domain.SlotRepository
	location     *time.Location
	now          func() time.Time
}

// NewSlotService creates a SlotService that expands availability read through availability.
func NewSlotService(logger *slog.Logger, availability domain.AvailabilityService, slotRepo domain.SlotRepository, defaultLocation *time.Location) domain.SlotService {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &slotService{
		logger:       logger,
		availability: availability,
		slotRepo:     slotRepo,
		location:     defaultLocation,
		now:          time.Now,
	}
}

// GenerateWeeklySlots creates the missing slots for the seven days starting at startDate
// and returns how many were created. Calling it again for the same week creates nothing.
func (s *slotService) GenerateWeeklySlots(ctx context.Context, actor domain.Actor, ownerID string, startDate time.Time) (int, error) {
	if !actor.CanManageSpeaker(ownerID) {
		return 0, domain.ErrForbidden
	}
	p, err := s.availability.GetAvailability(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	loc := p.Location(s.location)
	// The date is taken as written by the caller, then re-anchored in the speaker's zone.
	y, m, d := startDate.Date()
	slots := scheduling.ExpandWeek(p, time.Date(y, m, d, 0, 0, 0, 0, loc), loc, s.now())
	if len(slots) == 0 {
		return 0, nil
	}
	created, err := s.slotRepo.UpsertMany(ctx, slots)
	if err != nil {
		return 0, fmt.Errorf("upsert slots: %w", err)
	}
	s.logger.InfoContext(ctx, "weekly slots generated",
		"owner_id", ownerID,
		"start_date", startDate.Format(time.DateOnly),
		"candidates", len(slots),
		"created", created,
	)
	return created, nil
}

// ListAvailableSlots returns available slots inside [from, to]. An owner without slots,
// known or not, yields an empty list.
func (s *slotService) ListAvailableSlots(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Slot, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", domain.ErrInvalidInput)
	}
	slots, err := s.slotRepo.ListAvailable(ctx, ownerID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	if slots == nil {
		slots = []*domain.Slot{}
	}
	return slots, nil
}

func (s *slotService) BlockSlot(ctx context.Context, actor domain.Actor, ownerID string, startAt time.Time) (*domain.Slot, error) {
	if !actor.CanManageSpeaker(ownerID) {
		return nil, domain.ErrForbidden
	}
	slot, err := s.slotRepo.SetStatus(ctx, ownerID, startAt.UTC(), domain.SlotAvailable, domain.SlotUnavailable)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("block slot: %w", err)
	}
	return slot, nil
}
