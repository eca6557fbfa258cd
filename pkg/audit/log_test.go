package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/srxwire-net/srxwire/pkg/engine"
)

func sampleOutcome(success bool) *engine.Outcome {
	return &engine.Outcome{
		Success:   success,
		Message:   "configuration applied successfully",
		Simulated: true,
		Timestamp: time.Now(),
	}
}

func sampleRequest(addr string) engine.Request {
	return engine.Request{
		Address:     addr,
		Simulate:    true,
		Interface:   "ge-0/0/1",
		InterfaceIP: "192.168.10.1/24",
		Zone:        "trust",
	}
}

func TestLog_RecordAndList(t *testing.T) {
	log := NewLog()

	log.Record(sampleRequest("10.0.0.1"), sampleOutcome(true))
	log.Record(sampleRequest("10.0.0.2"), sampleOutcome(false))

	entries := log.List()
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Request.Address != "10.0.0.1" {
		t.Errorf("entries[0] address = %s, want 10.0.0.1 (insertion order)", entries[0].Request.Address)
	}
	if entries[1].Request.Address != "10.0.0.2" {
		t.Errorf("entries[1] address = %s", entries[1].Request.Address)
	}
	if entries[0].ID == entries[1].ID {
		t.Error("entry IDs should be unique")
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("entry timestamp should be set")
	}
}

func TestLog_ListReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Record(sampleRequest("10.0.0.1"), sampleOutcome(true))

	entries := log.List()
	entries[0] = nil

	if log.List()[0] == nil {
		t.Error("mutating the returned slice should not affect the log")
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	log := NewLog()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log.Record(sampleRequest(fmt.Sprintf("10.0.0.%d", i)), sampleOutcome(true))
		}(i)
	}
	wg.Wait()

	if log.Len() != n {
		t.Errorf("Len() = %d, want %d", log.Len(), n)
	}
}

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	log := NewLog(sink)
	log.Record(sampleRequest("10.0.0.1"), sampleOutcome(true))
	log.Record(sampleRequest("10.0.0.2"), sampleOutcome(false))
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening sink file: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Errorf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("sink file has %d lines, want 2", lines)
	}
}

func TestFileSink_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path, RotationConfig{MaxSize: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	log := NewLog(sink)
	for i := 0; i < 5; i++ {
		log.Record(sampleRequest("10.0.0.1"), sampleOutcome(true))
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("expected at least one rotated file")
	}
	if len(matches) > 2 {
		t.Errorf("rotated files = %d, want at most MaxBackups=2", len(matches))
	}
}

func TestLog_PasswordNeverStored(t *testing.T) {
	log := NewLog()
	req := engine.Request{
		Address:     "10.0.0.1",
		Username:    "admin",
		Password:    "secret",
		Interface:   "ge-0/0/1",
		InterfaceIP: "192.168.10.1/24",
		Zone:        "trust",
	}
	// The engine snapshots requests before recording; simulate that here.
	log.Record(req.Snapshot(), sampleOutcome(true))

	if got := log.List()[0].Request.Password; got != "" {
		t.Errorf("stored password = %q, want empty", got)
	}
}
