package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/observability"
	"github.com/spec-kit/org-directory/internal/repository"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	store     *repository.MemoryStore
	deps      Dependencies
	users     *UserService
	teams     *TeamService
	sessions  *SessionService
	seeder    *Seeder
	directory *DirectoryService
	published []events.Event
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{store: repository.NewMemoryStore(), now: testNow}
	seq := 0
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventUserCreated, events.EventUserUpdated, events.EventUserDeleted,
		events.EventTeamCreated, events.EventTeamUpdated, events.EventTeamMembersChanged, events.EventTeamDeleted,
		events.EventSessionStarted, events.EventSessionEnded,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			env.published = append(env.published, e)
			return nil
		})
	}

	env.deps = Dependencies{
		Store:      env.store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Metrics:    observability.NewMetrics(),
		Clock:      func() time.Time { return env.now },
		IDs: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Passwords: auth.NewPasswordPolicy(6),
	}
	env.users = NewUserService(env.deps)
	env.teams = NewTeamService(env.deps)
	env.sessions = NewSessionService(env.deps, auth.NewTokenManager("test-secret", 60))
	env.seeder = NewSeeder(env.deps)
	env.directory = NewDirectoryService(env.deps)
	return env
}

// seeded returns an env with the default users and team in place.
func seeded(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	ok, err := env.seeder.Seed(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return env
}

func (e *testEnv) snapshot(t *testing.T) *repository.Snapshot {
	t.Helper()
	snap, err := e.store.Load(context.Background())
	require.NoError(t, err)
	return snap
}

func (e *testEnv) user(t *testing.T, email string) domain.User {
	t.Helper()
	u, ok := repository.UserCollection(e.snapshot(t).Users).GetByEmail(email)
	require.True(t, ok, "user %s", email)
	return u
}

func (e *testEnv) actor(t *testing.T, email string) domain.Actor {
	t.Helper()
	return domain.ActorOf(e.user(t, email).Public())
}

func (e *testEnv) defaultTeam(t *testing.T) domain.Team {
	t.Helper()
	for _, team := range e.snapshot(t).Teams {
		if team.Name == SeedTeamName {
			return team
		}
	}
	t.Fatalf("default team missing")
	return domain.Team{}
}

func (e *testEnv) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(e.published))
	for _, ev := range e.published {
		types = append(types, ev.Type)
	}
	return types
}

func strPtr(s string) *string { return &s }
