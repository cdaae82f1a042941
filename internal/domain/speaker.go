package domain

import (
	"context"
	"time"
)

// DayWindow is the part of a day, in "HH:MM" 24h local time, during which a speaker takes meetings.
// swagger:model DayWindow
type DayWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityPattern is a speaker's recurring weekly availability.
// A weekday missing from Days means the speaker is unavailable that day.
// swagger:model AvailabilityPattern
type AvailabilityPattern struct {
	SpeakerID   string                      `json:"speaker_id"`
	Timezone    string                      `json:"timezone"`
	SlotMinutes int                         `json:"slot_minutes"`
	Days        map[time.Weekday]*DayWindow `json:"days"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// NewAvailabilityPattern returns an empty pattern for speakerID.
func NewAvailabilityPattern(speakerID, timezone string, slotMinutes int, createdAt, updatedAt time.Time) *AvailabilityPattern {
	return &AvailabilityPattern{
		SpeakerID:   speakerID,
		Timezone:    timezone,
		SlotMinutes: slotMinutes,
		Days:        make(map[time.Weekday]*DayWindow),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Window returns the window for day, or nil when the speaker is unavailable.
func (p *AvailabilityPattern) Window(day time.Weekday) *DayWindow {
	if p == nil || p.Days == nil {
		return nil
	}
	return p.Days[day]
}

// Location resolves the pattern's time zone, falling back to fallback when unset or unknown.
func (p *AvailabilityPattern) Location(fallback *time.Location) *time.Location {
	if p != nil && p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}

// DayBookableTimes is the expanded view of one day of a speaker's availability.
// swagger:model DayBookableTimes
type DayBookableTimes struct {
	SpeakerID string     `json:"speaker_id"`
	Day       string     `json:"day"`
	Window    *DayWindow `json:"window"`
	Times     []string   `json:"times"`
}

// AvailabilityRepository stores speakers' weekly availability.
type AvailabilityRepository interface {
	// GetBySpeakerID returns ErrNotFound when the speaker has never declared availability.
	GetBySpeakerID(ctx context.Context, speakerID string) (*AvailabilityPattern, error)
	Upsert(ctx context.Context, pattern *AvailabilityPattern) error
}

// AvailabilityService exposes the availability model.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, speakerID string) (*AvailabilityPattern, error)
	SetAvailability(ctx context.Context, actor Actor, pattern *AvailabilityPattern) (*AvailabilityPattern, error)
	GetDayWindow(ctx context.Context, speakerID string, weekday time.Weekday) (*DayWindow, error)
	// ListBookableTimes accepts a weekday name or a YYYY-MM-DD date as day.
	ListBookableTimes(ctx context.Context, speakerID, day string) (*DayBookableTimes, error)
}
