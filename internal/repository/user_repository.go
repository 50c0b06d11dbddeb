package repository

import (
	"strings"

	"github.com/spec-kit/org-directory/internal/domain"
)

// UserCollection is the stored Users collection.
type UserCollection []domain.User

// GetByID returns a copy of the user with id.
func (c UserCollection) GetByID(id string) (domain.User, bool) {
	for _, u := range c {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// GetByEmail matches email case-insensitively.
func (c UserCollection) GetByEmail(email string) (domain.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range c {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return domain.User{}, false
}

// EmailTaken reports whether another user than excludeID already uses email.
func (c UserCollection) EmailTaken(email, excludeID string) bool {
	u, ok := c.GetByEmail(email)
	return ok && u.ID != excludeID
}

// Replace swaps the record with the same id.
func (c UserCollection) Replace(user domain.User) UserCollection {
	out := make(UserCollection, len(c))
	for i, u := range c {
		if u.ID == user.ID {
			out[i] = user
			continue
		}
		out[i] = u
	}
	return out
}

// Without drops the record with id.
func (c UserCollection) Without(id string) UserCollection {
	out := make(UserCollection, 0, len(c))
	for _, u := range c {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
