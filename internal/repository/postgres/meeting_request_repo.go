package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"meetingscheduler/internal/domain"
)

const meetingColumns = `id, speaker_id, requester_id, start_at, end_at, status, meeting_type, boost_amount, message, responded_at, created_at, updated_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type meetingRequestRepository struct {
	DB *sql.DB
}

func NewMeetingRequestRepository(db *sql.DB) domain.MeetingRequestRepository {
	return &meetingRequestRepository{DB: db}
}

func scanMeeting(row rowScanner) (*domain.MeetingRequest, error) {
	m := &domain.MeetingRequest{}
	var responded sql.NullTime
	if err := row.Scan(
		&m.ID, &m.SpeakerID, &m.RequesterID, &m.StartAt, &m.EndAt, &m.Status,
		&m.MeetingType, &m.BoostAmount, &m.Message, &responded, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if responded.Valid {
		m.RespondedAt = &responded.Time
	}
	return m, nil
}

func listMeetings(ctx context.Context, q queryer, query string, args ...any) ([]*domain.MeetingRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.MeetingRequest, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func snapshot(ctx context.Context, q queryer, speakerID, requesterID string, startAt, endAt time.Time) (*domain.BookingSnapshot, error) {
	atStart, err := listMeetings(ctx, q, `
		SELECT `+meetingColumns+`
		FROM meeting_requests
		WHERE speaker_id = $1 AND start_at = $2 AND status IN ('requested', 'accepted')
	`, speakerID, startAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("speaker bookings: %w", err)
	}
	mine, err := listMeetings(ctx, q, `
		SELECT `+meetingColumns+`
		FROM meeting_requests
		WHERE requester_id = $1
		ORDER BY start_at
	`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("requester bookings: %w", err)
	}
	blocked, err := blockedSlots(ctx, q, speakerID, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("blocked slots: %w", err)
	}
	return &domain.BookingSnapshot{SpeakerAtStart: atStart, RequesterBookings: mine, BlockedSlots: blocked}, nil
}

func blockedSlots(ctx context.Context, q queryer, ownerID string, startAt, endAt time.Time) ([]*domain.Slot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, start_at, end_at, status, created_at, updated_at
		FROM slots
		WHERE owner_id = $1 AND status = $2 AND start_at < $4 AND end_at > $3
		ORDER BY start_at
	`, ownerID, domain.SlotUnavailable, startAt.UTC(), endAt.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Slot, 0)
	for rows.Next() {
		s := &domain.Slot{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.StartAt, &s.EndAt, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *meetingRequestRepository) Snapshot(ctx context.Context, speakerID, requesterID string, startAt, endAt time.Time) (*domain.BookingSnapshot, error) {
	return snapshot(ctx, r.DB, speakerID, requesterID, startAt, endAt)
}

// bookingLockKeys returns the advisory lock keys serializing bookings for a speaker and a
// requester, in a stable order so that concurrent transactions cannot deadlock.
func bookingLockKeys(speakerID, requesterID string) []string {
	keys := []string{"meeting:speaker:" + speakerID, "meeting:requester:" + requesterID}
	sort.Strings(keys)
	return keys
}

// CreateGuarded serializes on transaction-scoped advisory locks for the speaker and the
// requester, so the snapshot the guard sees cannot change before the insert commits.
// The partial unique index on (speaker_id, start_at) backs up the speaker check.
func (r *meetingRequestRepository) CreateGuarded(ctx context.Context, req *domain.MeetingRequest, guard domain.BookingGuard) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, key := range bookingLockKeys(req.SpeakerID, req.RequesterID) {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("acquire booking lock: %w", err)
		}
	}

	snap, err := snapshot(ctx, tx, req.SpeakerID, req.RequesterID, req.StartAt, req.EndAt)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(snap); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO meeting_requests (speaker_id, requester_id, start_at, end_at, status, meeting_type, boost_amount, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		req.SpeakerID, req.RequesterID, req.StartAt.UTC(), req.EndAt.UTC(), req.Status,
		req.MeetingType, req.BoostAmount, req.Message, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.NewConflictError(domain.ConflictSlotAlreadyBooked)
		}
		return err
	}
	return tx.Commit()
}

func (r *meetingRequestRepository) GetByID(ctx context.Context, id string) (*domain.MeetingRequest, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meeting_requests WHERE id = $1`, id)
	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *meetingRequestRepository) UpdateStatus(ctx context.Context, id string, from, to domain.MeetingStatus, at time.Time) (*domain.MeetingRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		UPDATE meeting_requests
		SET status = $1, responded_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + meetingColumns
	m, err := scanMeeting(tx.QueryRowContext(ctx, query, to, at, id, from))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		var current string
		err = tx.QueryRowContext(ctx, `SELECT status FROM meeting_requests WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: meeting request is %s", domain.ErrInvalidTransition, current)
	}

	if to == domain.MeetingAccepted {
		_, err := tx.ExecContext(ctx, `
			UPDATE slots SET status = $1, updated_at = $2
			WHERE owner_id = $3 AND start_at = $4 AND status = $5
		`, domain.SlotBooked, at, m.SpeakerID, m.StartAt, domain.SlotAvailable)
		if err != nil {
			return nil, fmt.Errorf("book slot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *meetingRequestRepository) ListByParticipant(ctx context.Context, f domain.MeetingRequestFilter) ([]*domain.MeetingRequest, int, error) {
	column := "requester_id"
	if f.Role == domain.RoleSpeaker {
		column = "speaker_id"
	}
	where := []string{column + " = $1"}
	args := []any{f.UserID}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM meeting_requests WHERE ` + whereClause
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + meetingColumns + ` FROM meeting_requests WHERE ` + whereClause + ` ORDER BY start_at, created_at`
	if f.Page.PageSize > 0 {
		args = append(args, f.Page.PageSize, f.Page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	items, err := listMeetings(ctx, r.DB, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
