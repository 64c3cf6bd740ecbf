// Package topic provides lazy topic creation, partition-count bookkeeping,
// and key-to-partition hashing for the broker.
package topic

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/Rakss1104/yak/internal/partitionlog"
)

// Topic is an in-memory record of a topic's fixed partition count and the
// open partition logs that back it.
type Topic struct {
	Name       string
	Partitions int

	logs []*partitionlog.Log
}

// Log returns the partition log for the given 0-based partition index.
func (t *Topic) Log(partition int) (*partitionlog.Log, error) {
	if partition < 0 || partition >= len(t.logs) {
		return nil, fmt.Errorf("topic: partition %d out of range for %q (%d partitions)", partition, t.Name, t.Partitions)
	}
	return t.logs[partition], nil
}

// Snapshot returns a read-only view of the topic's partition count and
// total message count across all partitions, for the /topics listing.
func (t *Topic) Snapshot() Snapshot {
	var messages int64
	for _, l := range t.logs {
		messages += l.Tail()
	}
	return Snapshot{Name: t.Name, Partitions: t.Partitions, Messages: messages}
}

// Snapshot is a read-only view of a topic used for the /topics listing.
type Snapshot struct {
	Name       string `json:"name"`
	Partitions int    `json:"partitions"`
	Messages   int64  `json:"messages"`
}

// Registry owns every topic known to this broker process. First Ensure call
// for a given name fixes its partition count for the lifetime of the
// process (I5); later calls with a different count are a no-op, logged.
type Registry struct {
	mu       sync.RWMutex
	topics   map[string]*Topic
	dataDir  string
	brokerID string
	opener   func(path string) (*partitionlog.Log, error)
}

// NewRegistry creates an empty registry rooted at dataDir for brokerID.
func NewRegistry(dataDir, brokerID string) *Registry {
	return &Registry{
		topics:   make(map[string]*Topic),
		dataDir:  dataDir,
		brokerID: brokerID,
		opener:   partitionlog.Open,
	}
}

// Ensure creates the topic with n partitions if it does not already exist,
// opening one partitionlog.Log per partition. If the topic already exists,
// the existing topic is returned unchanged regardless of n.
func (r *Registry) Ensure(name string, n int) (*Topic, error) {
	r.mu.RLock()
	t, ok := r.topics[name]
	r.mu.RUnlock()
	if ok {
		if t.Partitions != n {
			slog.Warn("ignoring partition count on re-ensure of existing topic",
				"topic", name, "existing_partitions", t.Partitions, "requested_partitions", n)
		}
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another goroutine may have created it
	// between the RUnlock above and this Lock.
	if t, ok := r.topics[name]; ok {
		return t, nil
	}

	logs := make([]*partitionlog.Log, n)
	for p := 0; p < n; p++ {
		path := partitionlog.Path(r.dataDir, r.brokerID, name, p)
		l, err := r.opener(path)
		if err != nil {
			return nil, fmt.Errorf("topic: open partition %d of %q: %w", p, name, err)
		}
		logs[p] = l
	}

	t = &Topic{Name: name, Partitions: n, logs: logs}
	r.topics[name] = t
	slog.Info("topic created", "topic", name, "partitions", n)
	return t, nil
}

// Get returns the topic if already known, without creating it.
func (r *Registry) Get(name string) (*Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[name]
	return t, ok
}

// PartitionFor returns the stable partition index for key among n
// partitions. An empty key always maps to partition 0.
func PartitionFor(key string, n int) int {
	if key == "" {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(n))
}

// List returns a snapshot of every known topic, sorted by name by the caller
// if desired (the map is copied but not sorted here).
func (r *Registry) List() []*Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Topic, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, t)
	}
	return out
}

// Close closes every partition log owned by every topic in the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, t := range r.topics {
		for _, l := range t.logs {
			if err := l.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
