package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rakss1104/yak/internal/brokererr"
	"github.com/Rakss1104/yak/internal/partitionlog"
	"github.com/Rakss1104/yak/internal/topic"
)

// produceData is the payload nested under "data" in a produce request.
type produceData struct {
	Topic   string          `json:"topic"`
	Key     string          `json:"key,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type produceRequest struct {
	MsgID string      `json:"msg_id"`
	Data  produceData `json:"data"`
}

type produceResponse struct {
	Status    string `json:"status"`
	Offset    int64  `json:"offset,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Partition *int   `json:"partition,omitempty"`
	LeaderID  string `json:"leader_id"`
}

// handleProduce implements the produce algorithm: parse, claim msg_id,
// ensure topic, compute partition, construct record, append, replicate,
// commit, reply. Any failure between claim and commit releases the claim
// so the same msg_id can be retried.
func (b *Broker) handleProduce(w http.ResponseWriter, r *http.Request) {
	if !b.requireLeader(w) {
		return
	}

	var req produceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "invalid JSON body"), nil)
		return
	}
	if req.MsgID == "" {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "msg_id is required"), nil)
		return
	}
	if req.Data.Topic == "" {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "data.topic is required"), nil)
		return
	}

	ctx := r.Context()

	isNew, err := b.idem.Claim(ctx, req.MsgID)
	if err != nil {
		slog.Error("idempotence claim failed", "msg_id", req.MsgID, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to claim msg_id"), nil)
		return
	}
	if !isNew {
		json.NewEncoder(w).Encode(produceResponse{
			Status:   "duplicate",
			Topic:    req.Data.Topic,
			LeaderID: b.id,
		})
		return
	}

	committed := false
	defer func() {
		if !committed {
			if err := b.idem.Release(ctx, req.MsgID); err != nil {
				slog.Error("failed to release msg_id claim after produce failure", "msg_id", req.MsgID, "error", err)
			}
		}
	}()

	t, err := b.topics.Ensure(req.Data.Topic, b.cfg.DefaultPartitions)
	if err != nil {
		slog.Error("failed to ensure topic", "topic", req.Data.Topic, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to ensure topic"), nil)
		return
	}

	partition := topic.PartitionFor(req.Data.Key, t.Partitions)
	plog, err := t.Log(partition)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to resolve partition log"), nil)
		return
	}

	rec := partitionlog.Record{
		MsgID:     req.MsgID,
		Topic:     req.Data.Topic,
		Partition: partition,
		Key:       req.Data.Key,
		Payload:   req.Data.Payload,
		Timestamp: time.Now().UTC(),
	}

	offset, err := plog.Append(rec)
	if err != nil {
		slog.Error("failed to append record", "topic", req.Data.Topic, "partition", partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to append record"), nil)
		return
	}
	rec.Offset = offset

	if err := b.replicateStrict(ctx, rec); err != nil {
		slog.Error("replication failed", "topic", req.Data.Topic, "partition", partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.ReplicationFailed, "replication failed"), nil)
		return
	}

	if _, err := b.commit.Commit(ctx, req.Data.Topic, partition); err != nil {
		slog.Error("failed to commit offset", "topic", req.Data.Topic, "partition", partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to commit offset"), nil)
		return
	}

	committed = true
	b.metric.RecordProduce("produced to " + req.Data.Topic + "/" + itoa(partition))

	json.NewEncoder(w).Encode(produceResponse{
		Status:    "success",
		Offset:    offset,
		Topic:     req.Data.Topic,
		Partition: &partition,
		LeaderID:  b.id,
	})
}

// replicateStrict replicates rec to the peer when a replication client is
// configured. Under strict strictness a replication failure is an error;
// under best-effort it is logged and swallowed.
func (b *Broker) replicateStrict(ctx context.Context, rec partitionlog.Record) error {
	if b.peer == nil || !b.peer.Enabled() {
		return nil
	}

	err := b.peer.Replicate(ctx, rec)
	if err == nil {
		b.metric.RecordReplication("replicated " + rec.Topic + "/" + itoa(rec.Partition) + " offset " + itoa64(rec.Offset))
		return nil
	}

	if b.strictness == "strict" {
		return err
	}

	slog.Warn("best-effort replication failed, continuing", "topic", rec.Topic, "partition", rec.Partition, "error", err)
	b.metric.RecordWarning("replication failed (best-effort): " + err.Error())
	return nil
}
