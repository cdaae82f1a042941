package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"meetingscheduler/internal/domain"
)

type slotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(db *sql.DB) domain.SlotRepository {
	return &slotRepository{DB: db}
}

// UpsertMany inserts all slots in one transaction. Slots overlapping an existing slot of
// the same owner, including one with the same start, are skipped and do not count as
// created. The slots_owner_no_overlap exclusion constraint covers concurrent callers.
func (r *slotRepository) UpsertMany(ctx context.Context, slots []*domain.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO slots (owner_id, start_at, end_at, status, created_at, updated_at)
		SELECT $1::text, $2::timestamptz, $3::timestamptz, $4::text, $5::timestamptz, $6::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM slots
			WHERE owner_id = $1::text AND start_at < $3::timestamptz AND end_at > $2::timestamptz
		)
		ON CONFLICT DO NOTHING
	`
	created := 0
	for _, s := range slots {
		res, err := tx.ExecContext(ctx, query, s.OwnerID, s.StartAt, s.EndAt, s.Status, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		created += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

func (r *slotRepository) ListAvailable(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Slot, error) {
	query := `
		SELECT id, owner_id, start_at, end_at, status, created_at, updated_at
		FROM slots
		WHERE owner_id = $1 AND status = $2 AND start_at >= $3 AND end_at <= $4
		ORDER BY start_at
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, domain.SlotAvailable, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		s := &domain.Slot{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.StartAt, &s.EndAt, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *slotRepository) SetStatus(ctx context.Context, ownerID string, startAt time.Time, from, to domain.SlotStatus) (*domain.Slot, error) {
	query := `
		UPDATE slots
		SET status = $1, updated_at = now()
		WHERE owner_id = $2 AND start_at = $3 AND status = $4
		RETURNING id, owner_id, start_at, end_at, status, created_at, updated_at
	`
	s := &domain.Slot{}
	err := r.DB.QueryRowContext(ctx, query, to, ownerID, startAt.UTC(), from).Scan(
		&s.ID, &s.OwnerID, &s.StartAt, &s.EndAt, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
