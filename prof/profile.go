// Package prof collects phase timings for the protocol. The prover,
// verifier and driver record one entry per phase; callers snapshot the
// record after a run.
package prof

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

var (
	mu     sync.Mutex
	record []Entry
)

// Track logs the duration since start with the given name.
func Track(start time.Time, name string) {
	elapsed := time.Since(start)
	mu.Lock()
	record = append(record, Entry{Label: name, Dur: elapsed})
	mu.Unlock()
}

// SnapshotAndReset returns the collected timing entries and clears them.
func SnapshotAndReset() []Entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Entry, len(record))
	copy(out, record)
	record = nil
	return out
}

// Dump writes the given entries to w, one line per entry.
func Dump(w io.Writer, entries []Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%-24s %v\n", e.Label, e.Dur)
	}
}
