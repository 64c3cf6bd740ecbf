package coordination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestRedisStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRedisStore_SetIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "leader_lease", "broker-a", time.Second)
	if err != nil || !ok {
		t.Fatalf("first SetIfAbsent() = %v, %v, want true, nil", ok, err)
	}

	ok, err = s.SetIfAbsent(ctx, "leader_lease", "broker-b", time.Second)
	if err != nil || ok {
		t.Fatalf("second SetIfAbsent() = %v, %v, want false, nil", ok, err)
	}

	val, err := s.Get(ctx, "leader_lease")
	if err != nil || val != "broker-a" {
		t.Fatalf("Get() = %q, %v, want broker-a, nil", val, err)
	}
}

func TestRedisStore_SetIfPresent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetIfPresent(ctx, "leader_lease", "broker-a", time.Second)
	if err != nil || ok {
		t.Fatalf("SetIfPresent() on absent key = %v, %v, want false, nil", ok, err)
	}

	if _, err := s.SetIfAbsent(ctx, "leader_lease", "broker-a", time.Second); err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}

	ok, err = s.SetIfPresent(ctx, "leader_lease", "broker-a", time.Second)
	if err != nil || !ok {
		t.Fatalf("SetIfPresent() on present key = %v, %v, want true, nil", ok, err)
	}
}

func TestRedisStore_Incr(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.Incr(ctx, "hwm:t:0")
	if err != nil || v != 1 {
		t.Fatalf("first Incr() = %d, %v, want 1, nil", v, err)
	}

	v, err = s.Incr(ctx, "hwm:t:0")
	if err != nil || v != 2 {
		t.Fatalf("second Incr() = %d, %v, want 2, nil", v, err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SetIfAbsent(ctx, "msg_lock:m1", "1", time.Second); err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}
	if err := s.Delete(ctx, "msg_lock:m1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "msg_lock:m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting an already-absent key is not an error.
	if err := s.Delete(ctx, "msg_lock:m1"); err != nil {
		t.Fatalf("Delete() on absent key error = %v, want nil", err)
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisStore(client)
	ctx := context.Background()

	if _, err := s.SetIfAbsent(ctx, "leader_lease", "broker-a", 5*time.Second); err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}

	mr.FastForward(6 * time.Second)

	if _, err := s.Get(ctx, "leader_lease"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after ttl expiry error = %v, want ErrNotFound", err)
	}
}

func TestRedisStore_Ping(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
