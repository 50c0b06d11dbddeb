package dto

import (
	"time"

	"github.com/spec-kit/org-directory/internal/domain"
)

// CreateUserRequest payload for new employees and admins.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Designation string `json:"designation"`
}

// UpdateUserRequest payload. Omitted fields stay unchanged; an empty password
// keeps the stored one.
type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Designation *string `json:"designation"`
}

// UpdateProfileRequest is the self-service edit. Changes are only applied when
// current_password matches the stored password.
type UpdateProfileRequest struct {
	UpdateUserRequest
	CurrentPassword string `json:"current_password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Role               domain.Role `json:"role"`
	Designation        string      `json:"designation,omitempty"`
	DisplayDesignation string      `json:"display_designation"`
	CreatedAt          time.Time   `json:"created_at"`
	CreatedBy          string      `json:"created_by"`
	CreatedByUserID    string      `json:"created_by_user_id,omitempty"`
	UpdatedAt          time.Time   `json:"updated_at"`
	UpdatedBy          string      `json:"updated_by"`
	UpdatedByUserID    string      `json:"updated_by_user_id,omitempty"`
}

// NewUserResponse renders a session user.
func NewUserResponse(u domain.SessionUser) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Designation:        u.Designation,
		DisplayDesignation: u.DisplayDesignation(),
		CreatedAt:          u.CreatedAt,
		CreatedBy:          u.CreatedBy,
		CreatedByUserID:    u.CreatedByUserID,
		UpdatedAt:          u.UpdatedAt,
		UpdatedBy:          u.UpdatedBy,
		UpdatedByUserID:    u.UpdatedByUserID,
	}
}

// NewUserResponses renders a list of users.
func NewUserResponses(users []domain.SessionUser) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
