package domain

import "time"

// User is a directory account. Password is an opaque credential and never leaves the
// core through SessionUser or any view type.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Password        string    `json:"password"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	Designation     string    `json:"designation,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatedBy       string    `json:"createdBy"`
	CreatedByUserID string    `json:"createdByUserId"`
	UpdatedAt       time.Time `json:"updatedAt"`
	UpdatedBy       string    `json:"updatedBy"`
	UpdatedByUserID string    `json:"updatedByUserId"`
}

// SessionUser is a User without its credential.
type SessionUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	Designation     string    `json:"designation,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatedBy       string    `json:"createdBy"`
	CreatedByUserID string    `json:"createdByUserId"`
	UpdatedAt       time.Time `json:"updatedAt"`
	UpdatedBy       string    `json:"updatedBy"`
	UpdatedByUserID string    `json:"updatedByUserId"`
}

// Public strips the credential.
func (u User) Public() SessionUser {
	return SessionUser{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		Designation:     u.Designation,
		CreatedAt:       u.CreatedAt,
		CreatedBy:       u.CreatedBy,
		CreatedByUserID: u.CreatedByUserID,
		UpdatedAt:       u.UpdatedAt,
		UpdatedBy:       u.UpdatedBy,
		UpdatedByUserID: u.UpdatedByUserID,
	}
}

// DisplayDesignation resolves the label shown for u.
func (u User) DisplayDesignation() string {
	return ResolveDesignation(u.Role, u.Designation)
}

// DisplayDesignation resolves the label shown for u.
func (u SessionUser) DisplayDesignation() string {
	return ResolveDesignation(u.Role, u.Designation)
}
