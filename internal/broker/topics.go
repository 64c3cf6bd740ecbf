package broker

import (
	"encoding/json"
	"net/http"

	"github.com/Rakss1104/yak/internal/topic"
)

// handleTopics lists every topic this broker knows about with its
// partition count and total message count.
func (b *Broker) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics := b.topics.List()
	snapshots := make([]topic.Snapshot, 0, len(topics))
	for _, t := range topics {
		snapshots = append(snapshots, t.Snapshot())
	}
	json.NewEncoder(w).Encode(snapshots)
}
