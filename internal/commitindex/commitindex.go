// Package commitindex persists the per-partition high-water mark in the
// coordination store so it survives restarts and is visible to whichever
// node is currently leader.
package commitindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Rakss1104/yak/internal/coordination"
)

// Index reads and advances high-water marks for (topic, partition) pairs.
type Index struct {
	store coordination.Store
}

// New creates a commit index backed by store.
func New(store coordination.Store) *Index {
	return &Index{store: store}
}

func key(topic string, partition int) string {
	return fmt.Sprintf("hwm:%s:%d", topic, partition)
}

// HWM returns the current high-water mark for (topic, partition). A missing
// key means no record has ever been committed for this partition, so it
// reads as 0.
func (idx *Index) HWM(ctx context.Context, topic string, partition int) (int64, error) {
	val, err := idx.store.Get(ctx, key(topic, partition))
	if errors.Is(err, coordination.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("commitindex: read hwm for %s/%d: %w", topic, partition, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("commitindex: hwm for %s/%d is not an integer: %w", topic, partition, err)
	}
	return n, nil
}

// Commit atomically advances the high-water mark for (topic, partition) by
// one and returns the new value, which is the offset just committed.
func (idx *Index) Commit(ctx context.Context, topic string, partition int) (int64, error) {
	n, err := idx.store.Incr(ctx, key(topic, partition))
	if err != nil {
		return 0, fmt.Errorf("commitindex: commit for %s/%d: %w", topic, partition, err)
	}
	return n, nil
}
