package domain

import "errors"

// Sentinel errors shared by services, repositories and delivery.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrQuotaExceeded     = errors.New("meeting request quota exceeded")
	ErrTicketNotVerified = errors.New("ticket not verified")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRateLimited       = errors.New("rate limited")
)

// ConflictReason is the outcome of a conflict check for a candidate meeting request.
type ConflictReason string

const (
	ConflictNone              ConflictReason = "ok"
	ConflictSlotAlreadyBooked ConflictReason = "slot_already_booked"
	ConflictRequester         ConflictReason = "requester_conflict"
	ConflictTicketNotVerified ConflictReason = "ticket_not_verified"
	ConflictInvalidDuration   ConflictReason = "invalid_duration"
)

// ConflictError reports why a meeting request could not be created.
// It unwraps to the sentinel matching the reason so callers can use errors.Is.
type ConflictError struct {
	Reason ConflictReason
}

// NewConflictError returns a ConflictError for reason.
func NewConflictError(reason ConflictReason) *ConflictError {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	return string(e.Reason)
}

func (e *ConflictError) Unwrap() error {
	switch e.Reason {
	case ConflictSlotAlreadyBooked, ConflictRequester:
		return ErrConflict
	case ConflictTicketNotVerified:
		return ErrTicketNotVerified
	case ConflictInvalidDuration:
		return ErrInvalidInput
	}
	return nil
}
