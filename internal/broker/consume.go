package broker

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rakss1104/yak/internal/brokererr"
)

type consumedMessage struct {
	Offset    int64           `json:"offset"`
	Topic     string          `json:"topic"`
	Partition int             `json:"partition"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type consumeResponse struct {
	Messages      []consumedMessage `json:"messages"`
	HighWaterMark int64             `json:"high_water_mark"`
}

// handleConsume implements the consume algorithm: parse topic/partition/
// offset, ensure the topic, reject unknown partitions, read the HWM, and
// scan the partition log for records strictly after the requested offset
// and at or below the HWM.
func (b *Broker) handleConsume(w http.ResponseWriter, r *http.Request) {
	if !b.requireLeader(w) {
		return
	}

	q := r.URL.Query()
	topicName := q.Get("topic")
	if topicName == "" {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "topic is required"), nil)
		return
	}

	partition, err := parseIntDefault(q.Get("partition"), 0)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "invalid partition"), nil)
		return
	}
	offset, err := parseIntDefault(q.Get("offset"), 0)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "invalid offset"), nil)
		return
	}
	if offset < 0 {
		brokererr.WriteJSON(w, brokererr.New(brokererr.BadRequest, "offset must not be negative"), nil)
		return
	}

	ctx := r.Context()

	t, err := b.topics.Ensure(topicName, b.cfg.DefaultPartitions)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to ensure topic"), nil)
		return
	}
	if partition < 0 || partition >= t.Partitions {
		brokererr.WriteJSON(w, brokererr.New(brokererr.NotFound, "unknown partition"), nil)
		return
	}

	plog, err := t.Log(partition)
	if err != nil {
		brokererr.WriteJSON(w, brokererr.New(brokererr.NotFound, "unknown partition"), nil)
		return
	}

	hwm, err := b.commit.HWM(ctx, topicName, partition)
	if err != nil {
		slog.Error("failed to read HWM", "topic", topicName, "partition", partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to read commit index"), nil)
		return
	}

	records, err := plog.Scan(int64(offset), hwm)
	if err != nil {
		slog.Error("failed to scan partition log", "topic", topicName, "partition", partition, "error", err)
		brokererr.WriteJSON(w, brokererr.New(brokererr.Internal, "failed to read partition log"), nil)
		return
	}

	messages := make([]consumedMessage, 0, len(records))
	for _, rec := range records {
		messages = append(messages, consumedMessage{
			Offset:    rec.Offset,
			Topic:     rec.Topic,
			Partition: rec.Partition,
			Data:      rec.Payload,
		})
	}

	b.metric.RecordConsume("consumed from " + topicName + "/" + itoa(partition))

	json.NewEncoder(w).Encode(consumeResponse{
		Messages:      messages,
		HighWaterMark: hwm,
	})
}

func parseIntDefault(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
