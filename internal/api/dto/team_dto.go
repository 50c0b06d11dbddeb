package dto

import (
	"time"

	"github.com/spec-kit/org-directory/internal/domain"
)

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTeamRequest payload.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateMembersRequest replaces a team's member set.
type UpdateMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// MemberResponse is one membership entry.
type MemberResponse struct {
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Designation string      `json:"designation"`
	Role        domain.Role `json:"role,omitempty"`
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Members     []MemberResponse `json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
	CreatedBy   string           `json:"created_by"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UpdatedBy   string           `json:"updated_by"`
}

// NewTeamResponse renders a team.
func NewTeamResponse(t domain.Team) TeamResponse {
	members := make([]MemberResponse, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, MemberResponse{
			UserID:      m.UserID,
			Name:        m.Name,
			Email:       m.Email,
			Designation: m.Designation,
			Role:        m.Role,
		})
	}
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Members:     members,
		CreatedAt:   t.CreatedAt,
		CreatedBy:   t.CreatedBy,
		UpdatedAt:   t.UpdatedAt,
		UpdatedBy:   t.UpdatedBy,
	}
}

// NewTeamResponses renders a list of teams.
func NewTeamResponses(teams []domain.Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, NewTeamResponse(t))
	}
	return out
}

// DirectoryResponse is the whole organization view.
type DirectoryResponse struct {
	Admins    []UserResponse `json:"admins"`
	Employees []UserResponse `json:"employees"`
	Teams     []TeamResponse `json:"teams"`
}
