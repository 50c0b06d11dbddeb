package repository

import "github.com/spec-kit/org-directory/internal/domain"

// TeamCollection is the stored Teams collection.
type TeamCollection []domain.Team

// GetByID returns a copy of the team with id.
func (c TeamCollection) GetByID(id string) (domain.Team, bool) {
	for _, t := range c {
		if t.ID == id {
			t.Members = append([]domain.Membership(nil), t.Members...)
			return t, true
		}
	}
	return domain.Team{}, false
}

// Replace swaps the record with the same id.
func (c TeamCollection) Replace(team domain.Team) TeamCollection {
	out := make(TeamCollection, len(c))
	for i, t := range c {
		if t.ID == team.ID {
			out[i] = team
			continue
		}
		out[i] = t
	}
	return out
}

// Without drops the record with id.
func (c TeamCollection) Without(id string) TeamCollection {
	out := make(TeamCollection, 0, len(c))
	for _, t := range c {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// PruneMember removes every membership referencing userID and returns the ids of
// the teams that changed.
func (c TeamCollection) PruneMember(userID string) (TeamCollection, []string) {
	out := make(TeamCollection, len(c))
	var changed []string
	for i, t := range c {
		kept := make([]domain.Membership, 0, len(t.Members))
		for _, m := range t.Members {
			if m.UserID != userID {
				kept = append(kept, m)
			}
		}
		if len(kept) != len(t.Members) {
			changed = append(changed, t.ID)
		}
		t.Members = kept
		out[i] = t
	}
	return out, changed
}
