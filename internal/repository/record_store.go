package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/org-directory/internal/domain"
)

// Snapshot is the full persisted state: both collections and the current session.
type Snapshot struct {
	Users   []domain.User
	Teams   []domain.Team
	Session *domain.Session
}

// RecordStore is the synchronous key-value persistence surface. Mutations never patch
// records in place: Update reads everything, lets fn transform the snapshot and writes
// everything back. When fn returns an error nothing is written.
type RecordStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Update(ctx context.Context, fn func(*Snapshot) error) error
	Ping(ctx context.Context) error
}

// Keys names the three stored records.
type Keys struct {
	Users   string
	Teams   string
	Session string
}

// NewKeys derives record keys from a prefix.
func NewKeys(prefix string) Keys {
	return Keys{
		Users:   prefix + "users",
		Teams:   prefix + "teams",
		Session: prefix + "currentUser",
	}
}

// All returns the keys in users, teams, session order.
func (k Keys) All() []string {
	return []string{k.Users, k.Teams, k.Session}
}

// Clone deep-copies s so that callers cannot alias stored state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	out := &Snapshot{}
	if s.Users != nil {
		out.Users = append([]domain.User(nil), s.Users...)
	}
	if s.Teams != nil {
		out.Teams = make([]domain.Team, len(s.Teams))
		for i, t := range s.Teams {
			t.Members = append([]domain.Membership(nil), t.Members...)
			out.Teams[i] = t
		}
	}
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	return out
}

type encodedSnapshot struct {
	users   []byte
	teams   []byte
	session []byte
}

func encodeSnapshot(s *Snapshot) (encodedSnapshot, error) {
	users := s.Users
	if users == nil {
		users = []domain.User{}
	}
	teams := s.Teams
	if teams == nil {
		teams = []domain.Team{}
	}

	var enc encodedSnapshot
	var err error
	if enc.users, err = json.Marshal(users); err != nil {
		return enc, fmt.Errorf("encode users: %w", err)
	}
	if enc.teams, err = json.Marshal(teams); err != nil {
		return enc, fmt.Errorf("encode teams: %w", err)
	}
	if s.Session != nil {
		if enc.session, err = json.Marshal(s.Session); err != nil {
			return enc, fmt.Errorf("encode session: %w", err)
		}
	}
	return enc, nil
}

func decodeSnapshot(users, teams, session []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := decodeStrict(users, &snap.Users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if err := decodeStrict(teams, &snap.Teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	if err := decodeStrict(session, &snap.Session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := checkRoles(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// checkRoles rejects records whose role is outside the closed set.
func checkRoles(snap *Snapshot) error {
	for _, u := range snap.Users {
		if !u.Role.Valid() {
			return fmt.Errorf("decode users: user %s has unknown role %q", u.ID, u.Role)
		}
	}
	for _, t := range snap.Teams {
		for _, m := range t.Members {
			if !m.Role.Valid() {
				return fmt.Errorf("decode teams: member %s of team %s has unknown role %q", m.UserID, t.ID, m.Role)
			}
		}
	}
	if snap.Session != nil && !snap.Session.User.Role.Valid() {
		return fmt.Errorf("decode session: unknown role %q", snap.Session.User.Role)
	}
	return nil
}

// decodeStrict rejects records carrying fields the domain types do not declare.
// An empty payload leaves v untouched.
func decodeStrict(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
