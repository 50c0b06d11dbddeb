package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-directory/internal/domain"
)

func sampleSnapshot() *Snapshot {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	emp := domain.User{ID: "u3", Email: "emp@gmail.com", Password: "employee123", Name: "Emp", Role: domain.RoleEmployee, CreatedAt: now, UpdatedAt: now}
	return &Snapshot{
		Users: []domain.User{
			{ID: "u1", Email: "root@example.com", Password: "admin123", Name: "Root", Role: domain.RoleSuperAdmin, CreatedAt: now, UpdatedAt: now},
			emp,
		},
		Teams: []domain.Team{
			{ID: "t1", Name: "Default Team", Description: "d", Members: []domain.Membership{domain.SnapshotMember(emp)}, CreatedAt: now},
		},
		Session: &domain.Session{ID: "s1", User: emp.Public(), StartedAt: now},
	}
}

// runStoreContract checks the behaviour every RecordStore must share.
func runStoreContract(t *testing.T, store RecordStore) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Users)
	assert.Empty(t, empty.Teams)
	assert.Nil(t, empty.Session)

	want := sampleSnapshot()
	require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
		*s = *want.Clone()
		return nil
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Users, got.Users)
	assert.Equal(t, want.Teams, got.Teams)
	require.NotNil(t, got.Session)
	assert.Equal(t, want.Session.User.ID, got.Session.User.ID)

	// a failing transform writes nothing
	boom := errors.New("boom")
	err = store.Update(ctx, func(s *Snapshot) error {
		s.Users = nil
		s.Teams = nil
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, after.Users, 2)
	assert.Len(t, after.Teams, 1)

	// clearing the session removes it
	require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
		s.Session = nil
		return nil
	}))
	cleared, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cleared.Session)
	assert.Len(t, cleared.Users, 2)

	require.NoError(t, store.Ping(ctx))
}
