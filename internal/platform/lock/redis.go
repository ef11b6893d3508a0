// Package lock provides short-lived distributed leases backed by Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the lease.
var ErrHeld = errors.New("lock: already held")

// Locker hands out leases keyed by name.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// New builds a Locker on top of the Redis client. A non-positive ttl falls back to 30s.
func New(rdb redis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

// Acquire obtains the lease for key without retrying. The returned release func is
// safe to call more than once.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}
	lk, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrHeld
	}
	if err != nil {
		return nil, fmt.Errorf("lock: obtain %s: %w", key, err)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The caller's context may already be cancelled; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lk.Release(ctx)
	}, nil
}

// TTL reports the lease duration.
func (l *Locker) TTL() time.Duration {
	if l == nil {
		return 0
	}
	return l.ttl
}
