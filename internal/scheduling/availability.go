// Package scheduling holds the pure decision logic of meeting booking: expanding
// availability into times and slots, conflict checks, quota arithmetic and the
// meeting request state machine. Nothing here touches storage.
package scheduling

import (
	"fmt"
	"strings"
	"time"

	"meetingscheduler/internal/domain"
)

// Slot length bounds accepted for an availability pattern.
const (
	MinSlotMinutes = 5
	MaxSlotMinutes = 30
)

// ParseClock parses a 24h "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q is not HH:MM", domain.ErrInvalidInput, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// BookableTimes expands a window into start times spaced slotMinutes apart.
// A time is included only when a whole slot fits before the window end.
func BookableTimes(w *domain.DayWindow, slotMinutes int) []string {
	times := []string{}
	if w == nil || slotMinutes <= 0 {
		return times
	}
	start, err := ParseClock(w.Start)
	if err != nil {
		return times
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return times
	}
	for t := start; t+slotMinutes <= end; t += slotMinutes {
		times = append(times, FormatClock(t))
	}
	return times
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday parses an English weekday name or its short form, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	if d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", domain.ErrInvalidInput, s)
}

// ParseDay resolves a day label, either a weekday name or a YYYY-MM-DD date, to a weekday.
func ParseDay(s string) (time.Weekday, error) {
	if d, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err == nil {
		return d.Weekday(), nil
	}
	return ParseWeekday(s)
}

// ValidatePattern checks a pattern before it is stored. It returns one message per problem.
func ValidatePattern(p *domain.AvailabilityPattern) []string {
	var errs []string
	if p.SpeakerID == "" {
		errs = append(errs, "speaker_id is required")
	}
	if p.SlotMinutes < MinSlotMinutes || p.SlotMinutes > MaxSlotMinutes {
		errs = append(errs, fmt.Sprintf("slot_minutes must be between %d and %d", MinSlotMinutes, MaxSlotMinutes))
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("unknown timezone %q", p.Timezone))
		}
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		w := p.Days[day]
		if w == nil {
			continue
		}
		start, err := ParseClock(w.Start)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s start must be HH:MM", day))
			continue
		}
		end, err := ParseClock(w.End)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s end must be HH:MM", day))
			continue
		}
		if start >= end {
			errs = append(errs, fmt.Sprintf("%s start must be before end", day))
		}
	}
	return errs
}
