package broker

import (
	"net/http"

	"github.com/Rakss1104/yak/internal/brokererr"
)

// requireLeader enforces the leader-check guard every write/read path uses:
// a non-leader fails fast with either a leader hint (400) or a not-yet-
// elected signal (503), so clients know whether to retry the same broker or
// find the new one. It returns true if the request may proceed.
func (b *Broker) requireLeader(w http.ResponseWriter) bool {
	if b.IsLeader() {
		return true
	}

	leaderID, known := b.LeaderID()
	if !known {
		brokererr.WriteJSON(w, brokererr.New(brokererr.NoLeader, "No leader elected yet"), nil)
		return false
	}

	brokererr.WriteJSON(w, brokererr.New(brokererr.NotLeader, "Not the leader"), map[string]interface{}{
		"leader_id": leaderID,
	})
	return false
}
