package broker

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Rakss1104/yak/internal/brokererr"
	"github.com/Rakss1104/yak/internal/replication"
)

// handleReplicate is the follower-side endpoint of C8: it accepts one
// record from the current leader and appends it to the corresponding local
// partition log. It never touches the commit index; HWM only advances on
// the leader. A node that currently believes it holds the lease rejects
// replication with 409, since an active leader accepting replicated writes
// would indicate a stale leader still pushing to what it thinks is a
// follower.
func (b *Broker) handleReplicate(w http.ResponseWriter, r *http.Request) {
	if b.IsLeader() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "this node currently holds the leader lease"})
		return
	}

	var env replication.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "invalid replication envelope"), nil)
		return
	}

	t, err := b.topics.Ensure(env.Record.Topic, b.cfg.DefaultPartitions)
	if err != nil {
		slog.Error("failed to ensure topic for replicated record", "topic", env.Record.Topic, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to ensure topic"), nil)
		return
	}

	plog, err := t.Log(env.Record.Partition)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.NotFound, "unknown partition"), nil)
		return
	}

	if _, err := plog.Append(env.Record); err != nil {
		slog.Error("failed to append replicated record", "topic", env.Record.Topic, "partition", env.Record.Partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to append replicated record"), nil)
		return
	}

	w.WriteHeader(http.StatusOK)
}
