// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/epaper/internal/platform/constants"
	"github.com/taibuivan/epaper/pkg/uuid"
)

// ErrLockHeld is returned by [KeyLocker.Acquire] when the key is already locked.
var ErrLockHeld = errors.New("news: ingestion lock held")

// releaseScript deletes the lock only if it still holds the caller's token,
// so an expired lock re-acquired by another caller is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisKeyLocker implements [KeyLocker] with SET NX PX on a shared Redis.
type RedisKeyLocker struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisKeyLocker returns a locker storing keys under news:ingest_lock:.
func NewRedisKeyLocker(client redis.UniversalClient) *RedisKeyLocker {
	return &RedisKeyLocker{client: client, prefix: constants.RedisPrefixIngestLock}
}

// Acquire takes the lock for key until release is called or ttl elapses.
func (l *RedisKeyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lockKey := l.prefix + key
	token := uuid.New()

	acquired, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("news: acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("news: release lock %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}
