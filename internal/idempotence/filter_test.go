package idempotence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Rakss1104/yak/internal/coordination"
)

func newTestFilter(t *testing.T, capacity int) *Filter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(coordination.NewRedisStore(client), time.Hour, capacity)
}

func TestFilter_FirstClaimIsNew(t *testing.T) {
	f := newTestFilter(t, 16)
	isNew, err := f.Claim(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if !isNew {
		t.Fatal("Claim() on first call = duplicate, want new")
	}
}

func TestFilter_RepeatClaimIsDuplicate(t *testing.T) {
	f := newTestFilter(t, 16)
	ctx := context.Background()

	if isNew, err := f.Claim(ctx, "m1"); err != nil || !isNew {
		t.Fatalf("first Claim() = %v, %v, want true, nil", isNew, err)
	}
	if isNew, err := f.Claim(ctx, "m1"); err != nil || isNew {
		t.Fatalf("second Claim() = %v, %v, want false, nil", isNew, err)
	}
}

func TestFilter_ReleaseAllowsRetry(t *testing.T) {
	f := newTestFilter(t, 16)
	ctx := context.Background()

	if isNew, err := f.Claim(ctx, "m1"); err != nil || !isNew {
		t.Fatalf("first Claim() = %v, %v, want true, nil", isNew, err)
	}
	if err := f.Release(ctx, "m1"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if isNew, err := f.Claim(ctx, "m1"); err != nil || !isNew {
		t.Fatalf("Claim() after release = %v, %v, want true, nil", isNew, err)
	}
}

func TestFilter_DistinctMsgIDsAreIndependent(t *testing.T) {
	f := newTestFilter(t, 16)
	ctx := context.Background()

	if isNew, err := f.Claim(ctx, "m1"); err != nil || !isNew {
		t.Fatalf("Claim(m1) = %v, %v, want true, nil", isNew, err)
	}
	if isNew, err := f.Claim(ctx, "m2"); err != nil || !isNew {
		t.Fatalf("Claim(m2) = %v, %v, want true, nil", isNew, err)
	}
}

func TestFilter_LocalCacheEvictsBeyondCapacity(t *testing.T) {
	f := newTestFilter(t, 2)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		if isNew, err := f.Claim(ctx, id); err != nil || !isNew {
			t.Fatalf("Claim(%s) = %v, %v, want true, nil", id, isNew, err)
		}
	}

	// m1 was evicted from the local cache, but the coordination store is
	// still authoritative, so the claim still resolves to duplicate.
	if isNew, err := f.Claim(ctx, "m1"); err != nil || isNew {
		t.Fatalf("Claim(m1) after eviction = %v, %v, want false, nil (store remains authoritative)", isNew, err)
	}
}
