// Package broker wires together the coordination client, partition logs,
// topic registry, commit index, idempotence filter, lease manager, and
// replication client/server into the broker's public HTTP surface.
package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Rakss1104/yak/internal/commitindex"
	"github.com/Rakss1104/yak/internal/config"
	"github.com/Rakss1104/yak/internal/coordination"
	"github.com/Rakss1104/yak/internal/idempotence"
	"github.com/Rakss1104/yak/internal/lease"
	"github.com/Rakss1104/yak/internal/metrics"
	"github.com/Rakss1104/yak/internal/replication"
	"github.com/Rakss1104/yak/internal/topic"
)

// Broker owns every component of one broker node and implements the HTTP
// handlers in this package as methods on it.
type Broker struct {
	id     string
	cfg    *config.Config
	store  coordination.Store
	topics *topic.Registry
	commit *commitindex.Index
	idem   *idempotence.Filter
	lease  *lease.Manager
	peer   *replication.Client
	metric *metrics.Collector

	strictness config.Strictness
}

// New wires a Broker from a validated Config and a connected coordination
// store.
func New(cfg *config.Config, store coordination.Store) *Broker {
	b := &Broker{
		id:         cfg.BrokerID,
		cfg:        cfg,
		store:      store,
		topics:     topic.NewRegistry(cfg.DataDir, cfg.BrokerID),
		commit:     commitindex.New(store),
		idem:       idempotence.New(store, time.Duration(cfg.IdempotenceTTLSeconds)*time.Second, 4096),
		metric:     metrics.NewCollector(cfg.ActivityRingSize),
		strictness: config.Strictness(cfg.ReplicationStrictness),
	}

	if cfg.PeerURL != "" {
		b.peer = replication.NewClient(cfg.PeerURL, time.Duration(cfg.ReplicationTimeoutMs)*time.Millisecond)
	}

	leaseTime := time.Duration(cfg.LeaseTimeSeconds) * time.Second
	renewInterval := time.Duration(cfg.RenewIntervalSeconds) * time.Second
	b.lease = lease.New(store, cfg.BrokerID, leaseTime, renewInterval,
		lease.WithOnElectionWon(func() {
			b.metric.RecordElectionWon("acquired leader lease")
		}),
		lease.WithOnLeadershipChanged(func(newRole lease.Role) {
			b.metric.RecordLeadershipChange("role changed to " + newRole.String())
		}),
	)

	return b
}

// Start begins the background lease watch/renew loops.
func (b *Broker) Start(ctx context.Context) {
	b.lease.Start(ctx)
}

// Stop halts background loops and releases owned resources.
func (b *Broker) Stop() {
	b.lease.Stop()
	if err := b.topics.Close(); err != nil {
		slog.Error("error closing topic registry", "error", err)
	}
}

// IsLeader reports whether this node currently holds the leader lease.
func (b *Broker) IsLeader() bool {
	return b.lease.IsLeader()
}

// LeaderID returns the last known lease holder, if any.
func (b *Broker) LeaderID() (string, bool) {
	return b.lease.LeaderID()
}

// CoordinationHealthy reports whether the coordination store currently
// responds to a ping.
func (b *Broker) CoordinationHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.store.Ping(ctx) == nil
}
