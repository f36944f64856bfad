package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "board:session:"

// Store persists sessions.
//
// Save is optimistic: it succeeds only when the stored session still carries
// s.Version (or, for Version 0, when nothing is stored yet), and then bumps
// s.Version. Otherwise it returns ErrSessionConflict, or ErrSessionNotFound
// when the session expired in between.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON with a sliding TTL, renewed on every
// load and save.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

// storedVersion reads only the version of an encoded session.
func storedVersion(data []byte) (int64, error) {
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, err
	}
	return head.Version, nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	key := keyPrefix + id
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load board session: %w", err)
	}
	if r.TTL > 0 {
		if err := r.Client.Expire(ctx, key, r.TTL).Err(); err != nil {
			return nil, fmt.Errorf("failed to renew board session: %w", err)
		}
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse board session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	key := keyPrefix + s.ID
	next := *s
	next.Version = s.Version + 1
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal board session: %w", err)
	}

	err = r.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if s.Version != 0 {
				return ErrSessionNotFound
			}
		case err != nil:
			return err
		default:
			v, err := storedVersion(current)
			if err != nil {
				return fmt.Errorf("failed to parse stored board session: %w", err)
			}
			if v != s.Version {
				return ErrSessionConflict
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.TTL)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		s.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrSessionConflict
	case errors.Is(err, ErrSessionConflict), errors.Is(err, ErrSessionNotFound):
		return err
	}
	return fmt.Errorf("failed to store board session: %w", err)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete board session: %w", err)
	}
	return nil
}
