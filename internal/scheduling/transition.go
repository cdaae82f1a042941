package scheduling

import (
	"fmt"

	"meetingscheduler/internal/domain"
)

// Who may move a requested meeting into each terminal status.
var transitionRoles = map[domain.MeetingStatus][]domain.ParticipantRole{
	domain.MeetingAccepted:  {domain.RoleSpeaker},
	domain.MeetingRejected:  {domain.RoleSpeaker},
	domain.MeetingCancelled: {domain.RoleRequester},
}

// ActorRoles returns the roles actor holds on m. Admins may act as requester.
func ActorRoles(actor domain.Actor, m *domain.MeetingRequest) []domain.ParticipantRole {
	var roles []domain.ParticipantRole
	if actor.UserID == m.SpeakerID {
		roles = append(roles, domain.RoleSpeaker)
	}
	if actor.UserID == m.RequesterID || actor.IsAdmin() {
		roles = append(roles, domain.RoleRequester)
	}
	return roles
}

// CanView reports whether actor may read m.
func CanView(actor domain.Actor, m *domain.MeetingRequest) bool {
	return actor.UserID == m.SpeakerID || actor.UserID == m.RequesterID || actor.IsAdmin()
}

// ValidateTransition checks a move of m from its current status to `to` by an actor with roles.
// Terminal states are checked first so they always answer ErrInvalidTransition.
func ValidateTransition(from, to domain.MeetingStatus, roles []domain.ParticipantRole) error {
	if from != domain.MeetingRequested {
		return fmt.Errorf("%w: meeting request is already %s", domain.ErrInvalidTransition, from)
	}
	allowed, ok := transitionRoles[to]
	if !ok {
		return fmt.Errorf("%w: cannot move %s to %q", domain.ErrInvalidTransition, from, to)
	}
	for _, want := range allowed {
		for _, have := range roles {
			if want == have {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: not allowed to set status %s", domain.ErrForbidden, to)
}
