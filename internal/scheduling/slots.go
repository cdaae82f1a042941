package scheduling

import (
	"time"

	"meetingscheduler/internal/domain"
)

// DaysPerGeneration is how many calendar days one weekly generation covers.
const DaysPerGeneration = 7

// ExpandWeek materializes slots for the seven calendar days starting at startDate.
// Dates and windows are read in loc; only the calendar date of startDate is used.
// Slots of one owner share the pattern's slot length, so they never overlap.
func ExpandWeek(p *domain.AvailabilityPattern, startDate time.Time, loc *time.Location, now time.Time) []*domain.Slot {
	if p == nil || p.SlotMinutes <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := startDate.Date()
	slotLen := time.Duration(p.SlotMinutes) * time.Minute

	var slots []*domain.Slot
	for i := 0; i < DaysPerGeneration; i++ {
		midnight := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		for _, clock := range BookableTimes(p.Window(midnight.Weekday()), p.SlotMinutes) {
			minutes, _ := ParseClock(clock)
			start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), minutes/60, minutes%60, 0, 0, loc)
			slots = append(slots, domain.NewSlot(p.SpeakerID, start, start.Add(slotLen), now))
		}
	}
	return slots
}
