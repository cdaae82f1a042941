package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/scheduling"
)

type availabilityService struct {
	repo               domain.AvailabilityRepository
	defaultLocation    *time.Location
	defaultSlotMinutes int
	now                func() time.Time
}

// NewAvailabilityService creates an AvailabilityService. Patterns without a time zone or
// slot length use defaultLocation and defaultSlotMinutes.
func NewAvailabilityService(repo domain.AvailabilityRepository, defaultLocation *time.Location, defaultSlotMinutes int) domain.AvailabilityService {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &availabilityService{
		repo:               repo,
		defaultLocation:    defaultLocation,
		defaultSlotMinutes: defaultSlotMinutes,
		now:                time.Now,
	}
}

// GetAvailability returns the speaker's pattern. A speaker who never declared availability
// gets an empty pattern rather than an error.
func (s *availabilityService) GetAvailability(ctx context.Context, speakerID string) (*domain.AvailabilityPattern, error) {
	p, err := s.repo.GetBySpeakerID(ctx, speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewAvailabilityPattern(speakerID, s.defaultLocation.String(), s.defaultSlotMinutes, time.Time{}, time.Time{}), nil
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}
	if p.SlotMinutes == 0 {
		p.SlotMinutes = s.defaultSlotMinutes
	}
	if p.Timezone == "" {
		p.Timezone = s.defaultLocation.String()
	}
	return p, nil
}

func (s *availabilityService) SetAvailability(ctx context.Context, actor domain.Actor, pattern *domain.AvailabilityPattern) (*domain.AvailabilityPattern, error) {
	if pattern == nil {
		return nil, fmt.Errorf("%w: availability is required", domain.ErrInvalidInput)
	}
	if !actor.CanManageSpeaker(pattern.SpeakerID) {
		return nil, domain.ErrForbidden
	}
	if pattern.SlotMinutes == 0 {
		pattern.SlotMinutes = s.defaultSlotMinutes
	}
	if pattern.Timezone == "" {
		pattern.Timezone = s.defaultLocation.String()
	}
	if errs := scheduling.ValidatePattern(pattern); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}

	now := s.now()
	if existing, err := s.repo.GetBySpeakerID(ctx, pattern.SpeakerID); err == nil {
		pattern.CreatedAt = existing.CreatedAt
	} else if errors.Is(err, domain.ErrNotFound) {
		pattern.CreatedAt = now
	} else {
		return nil, fmt.Errorf("get availability: %w", err)
	}
	pattern.UpdatedAt = now

	if err := s.repo.Upsert(ctx, pattern); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	return pattern, nil
}

func (s *availabilityService) GetDayWindow(ctx context.Context, speakerID string, weekday time.Weekday) (*domain.DayWindow, error) {
	p, err := s.GetAvailability(ctx, speakerID)
	if err != nil {
		return nil, err
	}
	return p.Window(weekday), nil
}

func (s *availabilityService) ListBookableTimes(ctx context.Context, speakerID, day string) (*domain.DayBookableTimes, error) {
	weekday, err := scheduling.ParseDay(day)
	if err != nil {
		return nil, err
	}
	p, err := s.GetAvailability(ctx, speakerID)
	if err != nil {
		return nil, err
	}
	w := p.Window(weekday)
	return &domain.DayBookableTimes{
		SpeakerID: speakerID,
		Day:       weekday.String(),
		Window:    w,
		Times:     scheduling.BookableTimes(w, p.SlotMinutes),
	}, nil
}
