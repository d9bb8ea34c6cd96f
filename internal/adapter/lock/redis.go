package lock

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"coopfin-loan-engine/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:embed lua/release.lua
var luaRelease string

type RedisLocker struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	maxWait time.Duration
	poll    time.Duration
	scrRel  *redis.Script
}

// NewRedisLocker holds each lock for at most ttl and waits up to maxWait to get it.
func NewRedisLocker(rdb redis.UniversalClient, ttl, maxWait time.Duration) *RedisLocker {
	l := &RedisLocker{
		rdb:     rdb,
		ttl:     ttl,
		maxWait: maxWait,
		poll:    10 * time.Millisecond,
		scrRel:  redis.NewScript(luaRelease),
	}
	// preload script (best-effort); Run falls back to EVAL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = l.scrRel.Load(ctx, rdb).Err()
	}()
	return l
}

func lockKey(key string) string { return fmt.Sprintf("lock:wallet:{%s}", key) }

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k := lockKey(key)
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(k, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func (l *RedisLocker) release(k, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.scrRel.Run(ctx, l.rdb, []string{k}, token).Err(); err != nil {
		// the key expires on its own after ttl
		logger.WithField("key", k).Warnf("lock: release failed: %v", err)
	}
}
