package partitionlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLog_AppendAssignsDenseOffsets(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "t_p0.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer l.Close()

	for i := 1; i <= 3; i++ {
		offset, err := l.Append(Record{MsgID: "m", Topic: "t", Partition: 0})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if int(offset) != i {
			t.Fatalf("Append() offset = %d, want %d", offset, i)
		}
	}

	if got := l.Tail(); got != 3 {
		t.Fatalf("Tail() = %d, want 3", got)
	}
}

func TestLog_ScanRespectsHWMAndExclusiveFrom(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "t_p0.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer l.Close()

	for i := 0; i < 5; i++ {
		if _, err := l.Append(Record{MsgID: "m", Topic: "t", Partition: 0}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	recs, err := l.Scan(1, 3)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Scan() returned %d records, want 2", len(recs))
	}
	if recs[0].Offset != 2 || recs[1].Offset != 3 {
		t.Fatalf("Scan() offsets = %d,%d, want 2,3", recs[0].Offset, recs[1].Offset)
	}
}

func TestLog_ScanEmptyWhenOffsetAtOrAboveHWM(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "t_p0.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer l.Close()

	if _, err := l.Append(Record{MsgID: "m", Topic: "t", Partition: 0}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	recs, err := l.Scan(1, 1)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("Scan() returned %d records, want 0", len(recs))
	}
}

func TestLog_ScanSkipsCorruptLinesWithoutShiftingOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t_p0.log")
	// Line 1: valid, line 2: corrupt, line 3: valid.
	content := `{"msg_id":"m1","topic":"t","partition":0,"offset":1}
not json at all
{"msg_id":"m3","topic":"t","partition":0,"offset":3}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer l.Close()

	if got := l.Tail(); got != 3 {
		t.Fatalf("Tail() after reopen = %d, want 3 (corrupt line still counts)", got)
	}

	recs, err := l.Scan(0, 3)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Scan() returned %d records, want 2 (corrupt line skipped)", len(recs))
	}
	if recs[0].Offset != 1 || recs[1].Offset != 3 {
		t.Fatalf("Scan() offsets = %d,%d, want 1,3 (offset 2 belongs to the corrupt line)", recs[0].Offset, recs[1].Offset)
	}
}

func TestLog_ReopenResumesOffsetSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t_p0.log")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := l.Append(Record{MsgID: "m1", Topic: "t", Partition: 0}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := l.Append(Record{MsgID: "m2", Topic: "t", Partition: 0}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer reopened.Close()

	offset, err := reopened.Append(Record{MsgID: "m3", Topic: "t", Partition: 0})
	if err != nil {
		t.Fatalf("Append() after reopen error = %v", err)
	}
	if offset != 3 {
		t.Fatalf("Append() after reopen offset = %d, want 3", offset)
	}
}
