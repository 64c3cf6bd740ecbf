// Package idempotence dedupes retried produce calls by caller-supplied
// message ID, using the coordination store as the authoritative lock with a
// bounded in-process LRU in front to absorb hot-retry traffic.
package idempotence

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rakss1104/yak/internal/coordination"
)

const sentinel = "1"

// Filter claims and releases msg_id locks.
type Filter struct {
	store coordination.Store
	ttl   time.Duration

	mu       sync.Mutex
	order    *list.List
	elements map[string]*list.Element
	capacity int
}

// New creates a Filter whose dedup window is ttl and whose local cache holds
// at most capacity recently-claimed message IDs.
func New(store coordination.Store, ttl time.Duration, capacity int) *Filter {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Filter{
		store:    store,
		ttl:      ttl,
		order:    list.New(),
		elements: make(map[string]*list.Element),
		capacity: capacity,
	}
}

func lockKey(msgID string) string {
	return fmt.Sprintf("msg_lock:%s", msgID)
}

// Claim attempts to claim msgID. It returns true (NEW) if this is the first
// claim seen within the idempotence window, false (DUPLICATE) otherwise.
func (f *Filter) Claim(ctx context.Context, msgID string) (bool, error) {
	if f.cacheHit(msgID) {
		return false, nil
	}

	ok, err := f.store.SetIfAbsent(ctx, lockKey(msgID), sentinel, f.ttl)
	if err != nil {
		return false, fmt.Errorf("idempotence: claim %s: %w", msgID, err)
	}
	if ok {
		f.cachePut(msgID)
	}
	return ok, nil
}

// Release clears the claim on msgID, from both the local cache and the
// coordination store, so that a failed produce can be retried.
func (f *Filter) Release(ctx context.Context, msgID string) error {
	f.cacheRemove(msgID)
	if err := f.store.Delete(ctx, lockKey(msgID)); err != nil {
		return fmt.Errorf("idempotence: release %s: %w", msgID, err)
	}
	return nil
}

func (f *Filter) cacheHit(msgID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, ok := f.elements[msgID]
	if !ok {
		return false
	}
	f.order.MoveToFront(el)
	return true
}

func (f *Filter) cachePut(msgID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if el, ok := f.elements[msgID]; ok {
		f.order.MoveToFront(el)
		return
	}

	el := f.order.PushFront(msgID)
	f.elements[msgID] = el

	for f.order.Len() > f.capacity {
		oldest := f.order.Back()
		if oldest == nil {
			break
		}
		f.order.Remove(oldest)
		delete(f.elements, oldest.Value.(string))
	}
}

func (f *Filter) cacheRemove(msgID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if el, ok := f.elements[msgID]; ok {
		f.order.Remove(el)
		delete(f.elements, msgID)
	}
}
