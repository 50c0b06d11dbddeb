package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each record as a JSONB row of directory_records. Update runs
// in one transaction holding row locks on all three records.
type PostgresStore struct {
	pool *pgxpool.Pool
	keys Keys
}

// NewPostgresStore ensures the three record rows exist.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, prefix string) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("postgres pool not configured")
	}
	s := &PostgresStore{pool: pool, keys: NewKeys(prefix)}

	const query = `
        INSERT INTO directory_records (key, value)
        VALUES ($1, '[]'::jsonb), ($2, '[]'::jsonb), ($3, 'null'::jsonb)
        ON CONFLICT (key) DO NOTHING`
	if _, err := pool.Exec(ctx, query, s.keys.Users, s.keys.Teams, s.keys.Session); err != nil {
		return nil, fmt.Errorf("init directory records: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	const query = `
        SELECT key, value FROM directory_records WHERE key = ANY($1)`
	rows, err := s.pool.Query(ctx, query, s.keys.All())
	if err != nil {
		return nil, err
	}
	return s.scanSnapshot(rows)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(*Snapshot) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const selectQuery = `
            SELECT key, value FROM directory_records WHERE key = ANY($1) FOR UPDATE`
		rows, err := tx.Query(ctx, selectQuery, s.keys.All())
		if err != nil {
			return err
		}
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		enc, err := encodeSnapshot(snap)
		if err != nil {
			return err
		}

		session := enc.session
		if session == nil {
			session = []byte("null")
		}

		const updateQuery = `
            UPDATE directory_records SET value=$1::jsonb, updated_at=NOW()
            WHERE key=$2`
		batch := &pgx.Batch{}
		batch.Queue(updateQuery, string(enc.users), s.keys.Users)
		batch.Queue(updateQuery, string(enc.teams), s.keys.Teams)
		batch.Queue(updateQuery, string(session), s.keys.Session)

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			cmd, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return err
			}
			if cmd.RowsAffected() == 0 {
				_ = results.Close()
				return pgx.ErrNoRows
			}
		}
		return results.Close()
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) scanSnapshot(rows pgx.Rows) (*Snapshot, error) {
	defer rows.Close()

	values := make(map[string][]byte, 3)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decodeSnapshot(values[s.keys.Users], values[s.keys.Teams], values[s.keys.Session])
}
