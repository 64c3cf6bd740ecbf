// Package lease implements the leader-election state machine described in
// the broker's component design: a single lease key in the coordination
// store, acquired with a conditional create and renewed with a conditional
// replace so that at most one broker ever believes it is leader.
package lease

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rakss1104/yak/internal/coordination"
)

// LeaseKey is the single coordination-store key that holds the current
// leader's broker ID.
const LeaseKey = "leader_lease"

// Role is the broker's current position in the election state machine.
type Role int32

const (
	RoleFollower Role = iota
	RoleLeader
)

func (r Role) String() string {
	if r == RoleLeader {
		return "leader"
	}
	return "follower"
}

// Manager runs the lease watch and renewal loops and exposes the broker's
// current role. The role is a single atomic field, not a shared boolean
// guarded ad hoc, so reads from request handlers never race with the
// background goroutines.
type Manager struct {
	store         coordination.Store
	brokerID      string
	leaseTime     time.Duration
	renewInterval time.Duration

	role atomic.Int32

	mu       sync.RWMutex
	leaderID string
	haveLeaderID bool

	onElectionWon      func()
	onLeadershipChanged func(newRole Role)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option customizes a Manager at construction time.
type Option func(*Manager)

// WithOnElectionWon registers a callback invoked every time this broker wins
// an election (acquires the lease from an absent state).
func WithOnElectionWon(fn func()) Option {
	return func(m *Manager) { m.onElectionWon = fn }
}

// WithOnLeadershipChanged registers a callback invoked whenever the role
// transitions, in either direction.
func WithOnLeadershipChanged(fn func(newRole Role)) Option {
	return func(m *Manager) { m.onLeadershipChanged = fn }
}

// New creates a lease Manager. renewInterval must not exceed half of
// leaseTime, per the broker's timing contract; callers are expected to have
// already validated this via config.Config.Validate.
func New(store coordination.Store, brokerID string, leaseTime, renewInterval time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		brokerID:      brokerID,
		leaseTime:     leaseTime,
		renewInterval: renewInterval,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsLeader reports whether this broker currently believes it is leader.
func (m *Manager) IsLeader() bool {
	return Role(m.role.Load()) == RoleLeader
}

// LeaderID returns the last known lease holder and whether a lease is
// currently known to exist.
func (m *Manager) LeaderID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leaderID, m.haveLeaderID
}

// Start launches the watch loop (always on) in the background. The renewal
// loop is started only after this broker wins an election.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.watchLoop(ctx)
}

// Stop halts all background goroutines and waits for them to exit.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Manager) setRole(newRole Role) {
	old := Role(m.role.Swap(int32(newRole)))
	if old != newRole {
		slog.Info("lease role transition", "broker_id", m.brokerID, "from", old, "to", newRole)
		if m.onLeadershipChanged != nil {
			m.onLeadershipChanged(newRole)
		}
	}
}

func (m *Manager) setLeaderID(id string, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderID = id
	m.haveLeaderID = known
}

// watchLoop reconciles local role against the coordination store's lease
// value every half lease-time. Always running, regardless of current role;
// this is what notices an absent lease (triggering try-acquire) and a lease
// held by someone else (triggering a demotion if we thought we were leader).
func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()

	m.reconcile(ctx)

	ticker := time.NewTicker(m.leaseTime / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.reconcile(ctx)
		}
	}
}

func (m *Manager) reconcile(ctx context.Context) {
	value, err := m.store.Get(ctx, LeaseKey)
	switch {
	case errors.Is(err, coordination.ErrNotFound):
		m.setLeaderID("", false)
		if m.tryAcquire(ctx) {
			m.becomeLeader(ctx)
		}
	case err != nil:
		slog.Warn("lease watch: coordination store unavailable", "error", err)
	case value == m.brokerID:
		m.setLeaderID(value, true)
		if !m.IsLeader() {
			// Recovery path: the store still shows us as leader (we likely
			// renewed successfully moments ago) but our local role had
			// fallen out of sync; restart renewal rather than sit idle.
			m.becomeLeader(ctx)
		}
	default:
		m.setLeaderID(value, true)
		if m.IsLeader() {
			m.setRole(RoleFollower)
		}
	}
}

func (m *Manager) tryAcquire(ctx context.Context) bool {
	ok, err := m.store.SetIfAbsent(ctx, LeaseKey, m.brokerID, m.leaseTime)
	if err != nil {
		slog.Warn("lease acquire attempt failed", "error", err)
		return false
	}
	if ok {
		slog.Info("lease acquired", "broker_id", m.brokerID)
		m.setLeaderID(m.brokerID, true)
		if m.onElectionWon != nil {
			m.onElectionWon()
		}
	}
	return ok
}

func (m *Manager) becomeLeader(ctx context.Context) {
	m.setRole(RoleLeader)
	m.wg.Add(1)
	go m.renewLoop(ctx)
}

// renewLoop renews the lease on a fixed cadence while this broker is leader.
// It exits (and self-demotes) the first time a conditional replace fails,
// meaning some other broker's clock won a race or the lease expired before
// we renewed it.
func (m *Manager) renewLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			if !m.IsLeader() {
				// A watch-loop reconcile already demoted us; nothing to do.
				return
			}
			ok, err := m.store.SetIfPresent(ctx, LeaseKey, m.brokerID, m.leaseTime)
			if err != nil {
				slog.Warn("lease renewal failed transiently", "error", err)
				continue
			}
			if !ok {
				slog.Warn("lease renewal lost the lease, stepping down", "broker_id", m.brokerID)
				m.setRole(RoleFollower)
				return
			}
		}
	}
}
