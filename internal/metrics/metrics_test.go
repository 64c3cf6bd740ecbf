package metrics

import "testing"

func TestCollector_CountersIncrement(t *testing.T) {
	c := NewCollector(10)
	c.RecordProduce("produced to t/0")
	c.RecordProduce("produced to t/1")
	c.RecordConsume("consumed from t/0")

	snap := c.Snapshot()
	if snap.Produced != 2 {
		t.Errorf("Produced = %d, want 2", snap.Produced)
	}
	if snap.Consumed != 1 {
		t.Errorf("Consumed = %d, want 1", snap.Consumed)
	}
}

func TestCollector_RingBoundedAtCapacity(t *testing.T) {
	c := NewCollector(3)
	for i := 0; i < 10; i++ {
		c.RecordProduce("event")
	}
	snap := c.Snapshot()
	if len(snap.Activity) != 3 {
		t.Fatalf("len(Activity) = %d, want 3", len(snap.Activity))
	}
}

func TestCollector_RingPreservesOrderOldestFirst(t *testing.T) {
	c := NewCollector(3)
	c.RecordProduce("first")
	c.RecordProduce("second")
	c.RecordProduce("third")
	c.RecordProduce("fourth")

	snap := c.Snapshot()
	want := []string{"second", "third", "fourth"}
	if len(snap.Activity) != len(want) {
		t.Fatalf("len(Activity) = %d, want %d", len(snap.Activity), len(want))
	}
	for i, ev := range snap.Activity {
		if ev.Message != want[i] {
			t.Errorf("Activity[%d].Message = %q, want %q", i, ev.Message, want[i])
		}
	}
}

func TestCollector_LastReplicationStampedOnReplication(t *testing.T) {
	c := NewCollector(10)
	if !c.Snapshot().LastReplicationUTC.IsZero() {
		t.Fatal("LastReplicationUTC is non-zero before any replication")
	}
	c.RecordReplication("replicated offset 1")
	if c.Snapshot().LastReplicationUTC.IsZero() {
		t.Fatal("LastReplicationUTC still zero after a replication")
	}
}
