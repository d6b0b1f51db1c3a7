package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contestbot/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "dialogue:"
	// revisionKey is never deleted, so revisions stay unique across Clear
	revisionKey      = "dialogue_revision"
	opTimeout        = 3 * time.Second
	maxWatchAttempts = 2
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps sessions in Redis with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	// onWatch runs inside the WATCH callback before writing
	onWatch func(ctx context.Context, key string)
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get returns the user's session
func (r *RedisStore) Get(userID int64) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.load(ctx, r.client, sessionKey(userID))
}

// Put stores the session under a fresh revision.
// A concurrent write to the key is retried once.
func (r *RedisStore) Put(userID int64, s *domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := sessionKey(userID)
	var err error
	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err = r.client.Watch(ctx, func(tx *redis.Tx) error {
			r.watched(ctx, key)
			return r.write(ctx, tx, key, s)
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to save session: %w", err)
}

// Swap stores next only if the current revision matches expected
func (r *RedisStore) Swap(userID int64, expected int64, next *domain.Session) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := sessionKey(userID)
	swapped := false
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		if current == nil || current.Revision != expected {
			return nil
		}
		r.watched(ctx, key)
		if err := r.write(ctx, tx, key, next); err != nil {
			return err
		}
		swapped = true
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return swapped, nil
}

// Clear removes the user's session
func (r *RedisStore) Clear(userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.client.Del(ctx, sessionKey(userID)).Err()
}

// Purge is a no-op: Redis expires idle sessions through key TTL
func (r *RedisStore) Purge() (int, error) {
	return 0, nil
}

func (r *RedisStore) load(ctx context.Context, c getter, key string) (*domain.Session, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) watched(ctx context.Context, key string) {
	if r.onWatch != nil {
		r.onWatch(ctx, key)
	}
}

func (r *RedisStore) write(ctx context.Context, tx *redis.Tx, key string, s *domain.Session) error {
	rev, err := tx.Incr(ctx, revisionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate session revision: %w", err)
	}

	cp := s.Clone()
	cp.Revision = rev
	cp.UpdatedAt = time.Now()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.Revision = rev
	return nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
}
