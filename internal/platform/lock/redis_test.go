package lock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute)
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "receipt:order-form:1:lock")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "receipt:order-form:1:lock")
	require.ErrorIs(t, err, ErrHeld)

	release()
	release()

	again, err := locker.Acquire(ctx, "receipt:order-form:1:lock")
	require.NoError(t, err)
	again()
}

func TestAcquireIndependentKeys(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	a, err := locker.Acquire(ctx, "a")
	require.NoError(t, err)
	defer a()
	b, err := locker.Acquire(ctx, "b")
	require.NoError(t, err)
	defer b()
}

func TestNilLockerIsNoop(t *testing.T) {
	var locker *Locker
	release, err := locker.Acquire(context.Background(), "x")
	require.NoError(t, err)
	release()
	require.Zero(t, locker.TTL())
}

func TestDefaultTTL(t *testing.T) {
	locker := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	require.Equal(t, 30*time.Second, locker.TTL())
}
