package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
)

// ErrLockHeld is returned by Acquire when another run holds the lock.
var ErrLockHeld = errors.New("ingestion run already in progress")

// ReleaseFunc gives a lock back.
type ReleaseFunc func(ctx context.Context) error

// RunLock keeps two ingestion runs from writing the same fetch window at once.
type RunLock interface {
	Acquire(ctx context.Context) (ReleaseFunc, error)
}

// NopRunLock always succeeds. Used when no Redis is configured.
type NopRunLock struct{}

func (NopRunLock) Acquire(context.Context) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisRunLock is a SET NX lock with a TTL so a crashed run cannot block forever.
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisRunLock(cfg config.RedisConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisRunLock{client: client, key: cfg.LockKey, ttl: cfg.LockTTL}, nil
}

func (l *RedisRunLock) Acquire(ctx context.Context) (ReleaseFunc, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", l.key, err)
		}
		return nil
	}, nil
}

func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

// NewRunLock returns a Redis lock when an address is configured and a no-op lock otherwise.
func NewRunLock(cfg config.RedisConfig) (RunLock, func() error, error) {
	if cfg.Addr == "" {
		return NopRunLock{}, func() error { return nil }, nil
	}
	l, err := NewRedisRunLock(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}
