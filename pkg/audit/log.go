// Package audit keeps the append-only history of configuration attempts.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/srxwire-net/srxwire/pkg/engine"
	"github.com/srxwire-net/srxwire/pkg/util"
)

// Entry is one recorded configuration attempt. Entries are never edited
// after insertion.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Request   engine.Request  `json:"request"`
	Outcome   *engine.Outcome `json:"outcome"`
}

// Sink receives entries as they are recorded. Sinks are best-effort: a sink
// failure is logged and never blocks the in-memory append.
type Sink interface {
	Write(entry *Entry) error
	Close() error
}

// Log is the process-scoped, insertion-order-preserving history of
// configuration attempts. Appends are serialized; reads never block writers
// indefinitely.
type Log struct {
	mu      sync.RWMutex
	entries []*Entry
	seq     uint64
	sinks   []Sink
}

// NewLog creates a log that tees entries to the given sinks.
func NewLog(sinks ...Sink) *Log {
	return &Log{sinks: sinks}
}

// Record appends an entry for the attempt. Implements engine.Recorder.
func (l *Log) Record(req engine.Request, outcome *engine.Outcome) {
	l.mu.Lock()
	l.seq++
	entry := &Entry{
		ID:        fmt.Sprintf("%d-%d", outcome.Timestamp.UnixNano(), l.seq),
		Timestamp: time.Now(),
		Request:   req,
		Outcome:   outcome,
	}
	l.entries = append(l.entries, entry)
	sinks := l.sinks
	l.mu.Unlock()

	for _, s := range sinks {
		if err := s.Write(entry); err != nil {
			util.Warnf("audit: sink write failed: %v", err)
		}
	}
}

// List returns all entries in insertion order. Callers wanting
// most-recent-first reverse at presentation time.
func (l *Log) List() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Entry(nil), l.entries...)
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close closes all sinks.
func (l *Log) Close() error {
	var firstErr error
	for _, s := range l.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
