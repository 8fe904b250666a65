package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker enforces single-flight execution of a named job. TryAcquire
// claims key for ttl; ok is false when another holder already owns it.
// release is always safe to call, even when ok is false.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// inProcessLocker is the degraded-but-correct fallback used when no
// Redis is configured: a per-key mutex guarantees single-flight within
// this process, with no cross-instance guarantee, matching the spec's
// single-writer assumption for the Non-goal of scale-out operation.
type inProcessLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newInProcessLocker() *inProcessLocker {
	return &inProcessLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *inProcessLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return func() {}, false, nil
	}
	return m.Unlock, true, nil
}

// redisLockPrefix namespaces scheduler locks from any other key space
// sharing the same Redis instance.
const redisLockPrefix = "docpythia:scheduler:"

// redisLocker enforces single-flight across every Scheduler instance
// sharing one Redis, via a SET NX PX lock per job name.
type redisLocker struct {
	client *redis.Client
}

func newRedisLocker(addr, passwordEnv string) (*redisLocker, error) {
	var password string
	if passwordEnv != "" {
		password = os.Getenv(passwordEnv)
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("scheduler: redis ping failed: %w", err)
	}
	return &redisLocker{client: client}, nil
}

func (l *redisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	ok, err := l.client.SetNX(ctx, redisLockPrefix+key, "1", ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("scheduler: lock acquire failed: %w", err)
	}
	if !ok {
		return func() {}, false, nil
	}
	release := func() {
		_ = l.client.Del(context.Background(), redisLockPrefix+key).Err()
	}
	return release, true, nil
}
