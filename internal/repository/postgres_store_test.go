package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/persistence"
)

// newTestPostgresPool connects to POSTGRES_TEST_DSN when set and otherwise starts a
// throwaway container. Either way the schema is migrated before returning.
func newTestPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests need a database")
	}
	ctx := context.Background()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("directory"),
			tcpostgres.WithUsername("directory"),
			tcpostgres.WithPassword("directory"),
			tcpostgres.BasicWaitStrategies(),
		)
		t.Cleanup(func() {
			if ctr != nil {
				require.NoError(t, ctr.Terminate(context.Background()))
			}
		})
		require.NoError(t, err)

		dsn, err = ctr.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return pool
}

func newTestPostgresStore(t *testing.T, pool *pgxpool.Pool) (*PostgresStore, string) {
	t.Helper()
	prefix := fmt.Sprintf("pgtest-%s:", uuid.NewString()[:8])
	store, err := NewPostgresStore(context.Background(), pool, prefix)
	require.NoError(t, err)
	return store, prefix
}

func rawRecord(t *testing.T, pool *pgxpool.Pool, key string) string {
	t.Helper()
	var value string
	err := pool.QueryRow(context.Background(), `SELECT value::text FROM directory_records WHERE key = $1`, key).Scan(&value)
	require.NoError(t, err)
	return value
}

func TestPostgresStore(t *testing.T) {
	pool := newTestPostgresPool(t)
	ctx := context.Background()

	t.Run("contract", func(t *testing.T) {
		store, _ := newTestPostgresStore(t, pool)
		runStoreContract(t, store)
	})

	t.Run("initial rows", func(t *testing.T) {
		_, prefix := newTestPostgresStore(t, pool)
		assert.Equal(t, "[]", rawRecord(t, pool, prefix+"users"))
		assert.Equal(t, "[]", rawRecord(t, pool, prefix+"teams"))
		assert.Equal(t, "null", rawRecord(t, pool, prefix+"currentUser"))
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		store, prefix := newTestPostgresStore(t, pool)
		require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
			*s = *sampleSnapshot()
			return nil
		}))

		again, err := NewPostgresStore(ctx, pool, prefix)
		require.NoError(t, err)
		snap, err := again.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Users, 2)
		assert.NotNil(t, snap.Session)
	})

	t.Run("cleared session is stored as json null", func(t *testing.T) {
		store, prefix := newTestPostgresStore(t, pool)
		require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
			*s = *sampleSnapshot()
			return nil
		}))
		assert.NotEqual(t, "null", rawRecord(t, pool, prefix+"currentUser"))

		require.NoError(t, store.Update(ctx, func(s *Snapshot) error {
			s.Session = nil
			return nil
		}))
		assert.Equal(t, "null", rawRecord(t, pool, prefix+"currentUser"))

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap.Session)
		assert.Len(t, snap.Users, 2)
	})

	t.Run("missing row aborts the whole write", func(t *testing.T) {
		store, prefix := newTestPostgresStore(t, pool)
		_, err := pool.Exec(ctx, `DELETE FROM directory_records WHERE key = $1`, prefix+"currentUser")
		require.NoError(t, err)

		err = store.Update(ctx, func(s *Snapshot) error {
			s.Users = sampleSnapshot().Users
			return nil
		})
		require.ErrorIs(t, err, pgx.ErrNoRows)
		assert.Equal(t, "[]", rawRecord(t, pool, prefix+"users"))
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		store, prefix := newTestPostgresStore(t, pool)
		_, err := pool.Exec(ctx, `UPDATE directory_records SET value = $1::jsonb WHERE key = $2`,
			`[{"id":"1","email":"a@b.c","role":"ROOT"}]`, prefix+"users")
		require.NoError(t, err)

		_, err = store.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown role")
	})

	t.Run("concurrent updates serialize", func(t *testing.T) {
		store, _ := newTestPostgresStore(t, pool)
		const writers = 8

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- store.Update(ctx, func(s *Snapshot) error {
					// widen the window between read and write
					time.Sleep(10 * time.Millisecond)
					s.Users = append(s.Users, domain.User{
						ID:    fmt.Sprintf("u%d", i),
						Email: fmt.Sprintf("u%d@x.com", i),
						Role:  domain.RoleEmployee,
					})
					return nil
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Users, writers)
	})
}
