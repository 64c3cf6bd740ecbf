// Package metrics provides process-local counters and a bounded recent-event
// ring buffer for the broker's read-only /metrics endpoint. It follows the
// atomic-counters-plus-mutex-guarded-aux-state shape used throughout this
// codebase's background collectors, generalized from a Redis-backed
// cross-service collector to a single in-process one (the broker has no
// other instance to aggregate across; each node answers for itself).
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType tags an entry in the activity ring.
type EventType string

const (
	EventProduce   EventType = "produce"
	EventConsume   EventType = "consume"
	EventReplicate EventType = "replicate"
	EventElection  EventType = "election"
	EventWarning   EventType = "warning"
)

// Event is one entry in the bounded activity ring.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the read-only view returned by /metrics.
type Snapshot struct {
	Produced           uint64    `json:"produced"`
	Consumed           uint64    `json:"consumed"`
	Replications       uint64    `json:"replications"`
	ElectionsWon       uint64    `json:"elections_won"`
	LeadershipChanges  uint64    `json:"leadership_changes"`
	LastReplicationUTC time.Time `json:"last_replication_ts,omitempty"`
	Activity           []Event   `json:"activity"`
}

// Collector accumulates broker-local counters and recent-activity events.
type Collector struct {
	produced          atomic.Uint64
	consumed          atomic.Uint64
	replications      atomic.Uint64
	electionsWon      atomic.Uint64
	leadershipChanges atomic.Uint64

	mu                 sync.Mutex
	lastReplicationUTC time.Time
	ring               []Event
	ringCap            int
	ringNext           int
	ringLen            int
}

// NewCollector creates a Collector whose activity ring holds at most
// ringCapacity entries.
func NewCollector(ringCapacity int) *Collector {
	if ringCapacity <= 0 {
		ringCapacity = 50
	}
	return &Collector{
		ring:    make([]Event, ringCapacity),
		ringCap: ringCapacity,
	}
}

// RecordProduce increments the produced counter and logs an activity entry.
func (c *Collector) RecordProduce(message string) {
	c.produced.Add(1)
	c.push(EventProduce, message)
}

// RecordConsume increments the consumed counter and logs an activity entry.
func (c *Collector) RecordConsume(message string) {
	c.consumed.Add(1)
	c.push(EventConsume, message)
}

// RecordReplication increments the replications counter, stamps the last
// replication time, and logs an activity entry.
func (c *Collector) RecordReplication(message string) {
	c.replications.Add(1)
	c.mu.Lock()
	c.lastReplicationUTC = time.Now().UTC()
	c.mu.Unlock()
	c.push(EventReplicate, message)
}

// RecordElectionWon increments the elections-won counter and logs an
// activity entry.
func (c *Collector) RecordElectionWon(message string) {
	c.electionsWon.Add(1)
	c.push(EventElection, message)
}

// RecordLeadershipChange increments the leadership-changes counter.
func (c *Collector) RecordLeadershipChange(message string) {
	c.leadershipChanges.Add(1)
	c.push(EventElection, message)
}

// RecordWarning logs a warning-tagged activity entry without touching any
// counter.
func (c *Collector) RecordWarning(message string) {
	c.push(EventWarning, message)
}

func (c *Collector) push(t EventType, message string) {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      t,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ring[c.ringNext] = ev
	c.ringNext = (c.ringNext + 1) % c.ringCap
	if c.ringLen < c.ringCap {
		c.ringLen++
	}
}

// Snapshot returns the current counters and activity ring, oldest entry
// first.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	events := make([]Event, c.ringLen)
	start := (c.ringNext - c.ringLen + c.ringCap) % c.ringCap
	for i := 0; i < c.ringLen; i++ {
		events[i] = c.ring[(start+i)%c.ringCap]
	}
	last := c.lastReplicationUTC
	c.mu.Unlock()

	return Snapshot{
		Produced:           c.produced.Load(),
		Consumed:           c.consumed.Load(),
		Replications:       c.replications.Load(),
		ElectionsWon:       c.electionsWon.Load(),
		LeadershipChanges:  c.leadershipChanges.Load(),
		LastReplicationUTC: last,
		Activity:           events,
	}
}
