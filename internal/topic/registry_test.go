package topic

import (
	"testing"
)

func TestRegistry_EnsureCreatesOnFirstCall(t *testing.T) {
	r := NewRegistry(t.TempDir(), "broker-a")

	tp, err := r.Ensure("orders", 3)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if tp.Partitions != 3 {
		t.Fatalf("Ensure() partitions = %d, want 3", tp.Partitions)
	}
	for p := 0; p < 3; p++ {
		if _, err := tp.Log(p); err != nil {
			t.Errorf("Log(%d) error = %v", p, err)
		}
	}
}

func TestRegistry_SecondEnsureIgnoresDifferentCount(t *testing.T) {
	r := NewRegistry(t.TempDir(), "broker-a")

	first, err := r.Ensure("orders", 3)
	if err != nil {
		t.Fatalf("first Ensure() error = %v", err)
	}

	second, err := r.Ensure("orders", 7)
	if err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	if second != first {
		t.Fatalf("second Ensure() returned a different topic instance")
	}
	if second.Partitions != 3 {
		t.Fatalf("second Ensure() partitions = %d, want 3 (first ensure wins)", second.Partitions)
	}
}

func TestRegistry_GetUnknownTopic(t *testing.T) {
	r := NewRegistry(t.TempDir(), "broker-a")
	if _, ok := r.Get("nope"); ok {
		t.Fatal("Get() found a topic that was never ensured")
	}
}

func TestPartitionFor_EmptyKeyIsPartitionZero(t *testing.T) {
	if got := PartitionFor("", 5); got != 0 {
		t.Fatalf("PartitionFor(\"\") = %d, want 0", got)
	}
}

func TestPartitionFor_StableAcrossCalls(t *testing.T) {
	first := PartitionFor("user-42", 8)
	for i := 0; i < 100; i++ {
		if got := PartitionFor("user-42", 8); got != first {
			t.Fatalf("PartitionFor() not stable: got %d, want %d", got, first)
		}
	}
}

func TestPartitionFor_WithinRange(t *testing.T) {
	for _, key := range []string{"a", "b", "ka", "kb", "some-longer-key-value"} {
		p := PartitionFor(key, 3)
		if p < 0 || p >= 3 {
			t.Fatalf("PartitionFor(%q) = %d, out of range [0,3)", key, p)
		}
	}
}
