// Package partitionlog implements the durable append-only log that backs a
// single (topic, partition). Each partition owns exactly one log file; one
// JSON object per line, newline-terminated, offset = line number.
package partitionlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Log is a durable, append-only sequence of records for one (topic, partition).
// Appends are serialized by mu; scans open an independent read-only handle so
// they never block or are blocked by a concurrent append.
type Log struct {
	path string

	mu   sync.Mutex
	file *os.File
	// lines is the number of records written so far (== current tail offset).
	lines int64
}

// Path returns the broker-local file path for the given identity, topic, and
// partition, keeping leader and follower log files distinct even when they
// run on the same disk (as in local integration tests).
func Path(dataDir, brokerID, topic string, partition int) string {
	name := fmt.Sprintf("%s_%s_p%d.log", brokerID, topic, partition)
	return filepath.Join(dataDir, name)
}

// Open opens (creating if necessary) the log file at path and scans it once
// to recover the current line count, so Append can resume assigning offsets
// correctly after a restart.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("partitionlog: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("partitionlog: open %s: %w", path, err)
	}

	lines, err := countLines(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Log{path: path, file: f, lines: lines}, nil
}

func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("partitionlog: count lines %s: %w", path, err)
	}
	defer f.Close()

	var n int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("partitionlog: count lines %s: %w", path, err)
	}
	return n, nil
}

// Append writes one JSON-encoded record, flushed before returning success.
// The assigned offset is the new line count (1-based); it is also stamped
// onto the record before it is serialized so the on-disk copy matches the
// position it occupies.
func (l *Log) Append(rec Record) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	offset := l.lines + 1
	rec.Offset = offset

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("partitionlog: marshal record: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return 0, fmt.Errorf("partitionlog: write %s: %w", l.path, err)
	}
	if err := l.file.Sync(); err != nil {
		return 0, fmt.Errorf("partitionlog: sync %s: %w", l.path, err)
	}

	l.lines = offset
	return offset, nil
}

// Scan reads the log from the beginning and returns every record whose
// offset is > fromExclusive and <= hwm, in ascending offset order. A
// malformed line is skipped with a warning but still counts toward the
// offset sequence, preserving the dense 1..N invariant for well-formed
// records around it.
func (l *Log) Scan(fromExclusive, hwm int64) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("partitionlog: scan open %s: %w", l.path, err)
	}
	defer f.Close()

	var out []Record
	var offset int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		offset++
		if offset <= fromExclusive || offset > hwm {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			slog.Warn("skipping corrupt partition log line",
				"path", l.path, "offset", offset, "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("partitionlog: scan %s: %w", l.path, err)
	}
	return out, nil
}

// Tail returns the current number of appended lines (the next Append's
// offset minus one).
func (l *Log) Tail() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines
}

// Close releases the underlying file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
