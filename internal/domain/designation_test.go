package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDesignation(t *testing.T) {
	tests := []struct {
		name        string
		role        Role
		designation string
		want        string
	}{
		{"super admin wins over tag", RoleSuperAdmin, "backend", "Super Admin"},
		{"admin wins over tag", RoleAdmin, "tester", "Admin"},
		{"admin without tag", RoleAdmin, "", "Admin"},
		{"frontend", RoleEmployee, "frontend", "Frontend Developer"},
		{"backend", RoleEmployee, "backend", "Backend Developer"},
		{"fullstack", RoleEmployee, "fullstack", "Full Stack Developer"},
		{"tester", RoleEmployee, "tester", "Tester"},
		{"known tag is case insensitive", RoleEmployee, "Backend", "Backend Developer"},
		{"unknown tag passes through", RoleEmployee, "devops", "devops"},
		{"empty", RoleEmployee, "", "Not Assigned"},
		{"blank", RoleEmployee, "   ", "Not Assigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDesignation(tt.role, tt.designation))
		})
	}
}

func TestResolveMember(t *testing.T) {
	users := []User{
		{ID: "1", Name: "Ada", Email: "ada@x.com", Role: RoleAdmin},
		{ID: "2", Name: "Bo", Email: "bo@x.com", Role: RoleEmployee, Designation: "fullstack"},
		{ID: "3", Name: "Cy", Email: "cy@x.com", Role: RoleEmployee},
	}

	tests := []struct {
		name      string
		member    Membership
		want      Membership
		wantFound bool
	}{
		{
			name:      "employee with tag",
			member:    Membership{UserID: "2", Name: "Old", Email: "old@x.com", Designation: "Tester"},
			want:      Membership{UserID: "2", Name: "Bo", Email: "bo@x.com", Designation: "Full Stack Developer", Role: RoleEmployee},
			wantFound: true,
		},
		{
			name:      "admin",
			member:    Membership{UserID: "1"},
			want:      Membership{UserID: "1", Name: "Ada", Email: "ada@x.com", Designation: "Admin", Role: RoleAdmin},
			wantFound: true,
		},
		{
			name:      "employee without tag",
			member:    Membership{UserID: "3"},
			want:      Membership{UserID: "3", Name: "Cy", Email: "cy@x.com", Designation: LabelNotAssigned, Role: RoleEmployee},
			wantFound: true,
		},
		{
			name:      "dangling keeps stored identity",
			member:    Membership{UserID: "gone", Name: "Gone", Email: "gone@x.com", Designation: "Tester", Role: RoleEmployee},
			want:      Membership{UserID: "gone", Name: "Gone", Email: "gone@x.com", Designation: LabelNotAssigned, Role: RoleEmployee},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ResolveMember(tt.member, users)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPublicDropsPassword(t *testing.T) {
	u := User{ID: "9", Email: "a@b.c", Password: "secret1", Name: "A", Role: RoleEmployee, Designation: "tester"}
	pub := u.Public()
	assert.Equal(t, u.ID, pub.ID)
	assert.Equal(t, u.Email, pub.Email)
	assert.Equal(t, "Tester", pub.DisplayDesignation())
}

func TestTeamMembers(t *testing.T) {
	team := Team{Members: []Membership{
		SnapshotMember(User{ID: "a", Name: "A", Role: RoleEmployee, Designation: "backend"}),
		{UserID: "b"},
	}}
	assert.True(t, team.HasMember("a"))
	assert.False(t, team.HasMember("c"))
	assert.Equal(t, []string{"a", "b"}, team.MemberIDs())
	assert.Equal(t, "Backend Developer", team.Members[0].Designation)
}
