package postgres

import (
	"context"
	"database/sql"
	"errors"

	"meetingscheduler/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{DB: db}
}

func (r *ticketRepository) GetByUserID(ctx context.Context, userID string) (*domain.Ticket, error) {
	query := `
		SELECT id, user_id, tier, verified, created_at, updated_at
		FROM tickets
		WHERE user_id = $1
	`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&t.ID, &t.UserID, &t.Tier, &t.Verified, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}
