package domain

import (
	"context"
	"slices"
	"time"
)

// RoleAdmin is the application role that may act on any speaker or meeting request.
const RoleAdmin = "admin"

// User is the subset of a user profile needed to address notifications.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Roles  []string
}

// NewActor returns an Actor for userID with the given application roles.
func NewActor(userID string, roles ...string) Actor {
	return Actor{UserID: userID, Roles: roles}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// CanManageSpeaker reports whether the actor may change speakerID's availability and slots.
func (a Actor) CanManageSpeaker(speakerID string) bool {
	return a.UserID == speakerID || a.IsAdmin()
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated actor.
type TokenVerifier interface {
	Verify(token string) (Actor, error)
}

// UserRepository reads user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
