package partitionlog

import (
	"encoding/json"
	"time"
)

// Record is the unit of storage in a partition log.
type Record struct {
	MsgID     string          `json:"msg_id"`
	Topic     string          `json:"topic"`
	Partition int             `json:"partition"`
	Key       string          `json:"key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Offset    int64           `json:"offset"`
}
