package domain

import "time"

// Session is the single currently authenticated user context.
type Session struct {
	ID        string      `json:"id"`
	User      SessionUser `json:"user"`
	StartedAt time.Time   `json:"startedAt"`
}

// Actor identifies who performs an operation. It is passed explicitly into every
// lifecycle call and used for the updated/created stamps.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// SystemActor stamps records written outside any session, such as seed data.
var SystemActor = Actor{Name: "system"}

// ActorOf builds the actor for a session user.
func ActorOf(u SessionUser) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Is reports whether the actor is the user with the given id.
func (a Actor) Is(userID string) bool {
	return a.ID != "" && a.ID == userID
}
