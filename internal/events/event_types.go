package events

import (
	"time"

	"github.com/spec-kit/org-directory/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated        EventType = "user.created"
	EventUserUpdated        EventType = "user.updated"
	EventUserDeleted        EventType = "user.deleted"
	EventTeamCreated        EventType = "team.created"
	EventTeamUpdated        EventType = "team.updated"
	EventTeamMembersChanged EventType = "team.members_changed"
	EventTeamDeleted        EventType = "team.deleted"
	EventSessionStarted     EventType = "session.started"
	EventSessionEnded       EventType = "session.ended"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom converts a domain actor.
func ActorFrom(a domain.Actor) Actor {
	return Actor{UserID: a.ID, Name: a.Name, Role: a.Role}
}

// Event represents a domain event emitted by services after a successful commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserChangedPayload describes a created or updated user.
type UserChangedPayload struct {
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Designation string      `json:"designation"`
	SelfService bool        `json:"self_service,omitempty"`
}

// UserDeletedPayload lists the teams the user was pruned from.
type UserDeletedPayload struct {
	Email       string   `json:"email"`
	PrunedTeams []string `json:"pruned_teams,omitempty"`
}

// TeamPayload describes a created, updated or deleted team.
type TeamPayload struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// TeamMembersChangedPayload captures a wholesale member replacement.
type TeamMembersChangedPayload struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// SessionPayload describes a login or logout.
type SessionPayload struct {
	SessionID string `json:"session_id"`
}
