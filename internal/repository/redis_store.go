package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTxRetries = 5

// RedisStore keeps each record as a JSON string key. Update runs inside WATCH/MULTI
// and is retried when another writer touched the keys in between.
type RedisStore struct {
	client     *redis.Client
	keys       Keys
	maxRetries int
}

// NewRedisStore builds a store over client using prefix for its keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, keys: NewKeys(prefix), maxRetries: defaultRedisTxRetries}
}

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.keys.All()...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	return decodeRedisValues(vals)
}

func (s *RedisStore) Update(ctx context.Context, fn func(*Snapshot) error) error {
	txf := func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, s.keys.All()...).Result()
		if err != nil {
			return fmt.Errorf("redis mget: %w", err)
		}
		snap, err := decodeRedisValues(vals)
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

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keys.Users, enc.users, 0)
			pipe.Set(ctx, s.keys.Teams, enc.teams, 0)
			if enc.session == nil {
				pipe.Del(ctx, s.keys.Session)
			} else {
				pipe.Set(ctx, s.keys.Session, enc.session, 0)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, s.keys.All()...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis update: gave up after %d conflicting attempts", s.maxRetries)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}

func decodeRedisValues(vals []interface{}) (*Snapshot, error) {
	raw := make([][]byte, 3)
	for i := 0; i < len(vals) && i < len(raw); i++ {
		if str, ok := vals[i].(string); ok {
			raw[i] = []byte(str)
		}
	}
	return decodeSnapshot(raw[0], raw[1], raw[2])
}
