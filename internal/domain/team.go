package domain

import "time"

// Membership references a user together with a display snapshot taken when the
// member set was last written. The snapshot is re-derived on read.
type Membership struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	Role        Role   `json:"role"`
}

// Team groups directory users.
type Team struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Members         []Membership `json:"members"`
	CreatedAt       time.Time    `json:"createdAt"`
	CreatedBy       string       `json:"createdBy"`
	CreatedByUserID string       `json:"createdByUserId"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	UpdatedBy       string       `json:"updatedBy"`
	UpdatedByUserID string       `json:"updatedByUserId"`
}

// HasMember reports whether userID is in the member set.
func (t Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the referenced user ids in member order.
func (t Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// SnapshotMember captures the display fields of u for a membership entry.
func SnapshotMember(u User) Membership {
	return Membership{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Designation: u.DisplayDesignation(),
		Role:        u.Role,
	}
}

// ResolveMember re-derives m from the live users. A reference whose user no longer
// exists keeps its stored name and email, reads "Not Assigned" and reports found
// as false.
func ResolveMember(m Membership, users []User) (resolved Membership, found bool) {
	for _, u := range users {
		if u.ID == m.UserID {
			return SnapshotMember(u), true
		}
	}
	m.Designation = LabelNotAssigned
	return m, false
}
