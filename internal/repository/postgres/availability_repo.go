package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meetingscheduler/internal/domain"
)

type availabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) domain.AvailabilityRepository {
	return &availabilityRepository{DB: db}
}

// Days are stored keyed by weekday name, e.g. {"Monday": {"start": "09:00", "end": "12:00"}}.
func encodeDays(days map[time.Weekday]*domain.DayWindow) ([]byte, error) {
	named := make(map[string]*domain.DayWindow, len(days))
	for d, w := range days {
		if w != nil {
			named[d.String()] = w
		}
	}
	return json.Marshal(named)
}

func decodeDays(raw []byte) (map[time.Weekday]*domain.DayWindow, error) {
	named := map[string]*domain.DayWindow{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &named); err != nil {
			return nil, fmt.Errorf("decode availability days: %w", err)
		}
	}
	days := make(map[time.Weekday]*domain.DayWindow, len(named))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w, ok := named[d.String()]; ok && w != nil {
			days[d] = w
		}
	}
	return days, nil
}

func (r *availabilityRepository) GetBySpeakerID(ctx context.Context, speakerID string) (*domain.AvailabilityPattern, error) {
	query := `
		SELECT speaker_id, timezone, slot_minutes, days, created_at, updated_at
		FROM speaker_availability
		WHERE speaker_id = $1
	`
	p := &domain.AvailabilityPattern{}
	var raw []byte
	err := r.DB.QueryRowContext(ctx, query, speakerID).Scan(
		&p.SpeakerID, &p.Timezone, &p.SlotMinutes, &raw, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if p.Days, err = decodeDays(raw); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *availabilityRepository) Upsert(ctx context.Context, p *domain.AvailabilityPattern) error {
	raw, err := encodeDays(p.Days)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO speaker_availability (speaker_id, timezone, slot_minutes, days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (speaker_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    slot_minutes = EXCLUDED.slot_minutes,
		    days = EXCLUDED.days,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.DB.ExecContext(ctx, query, p.SpeakerID, p.Timezone, p.SlotMinutes, raw, p.CreatedAt, p.UpdatedAt)
	return err
}
