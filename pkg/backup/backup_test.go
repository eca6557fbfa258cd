package backup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/srxwire-net/srxwire/pkg/device"
)

func TestCreate_FromMockSession(t *testing.T) {
	ctx := context.Background()
	sess := device.NewMockSession("192.168.1.1")
	if _, err := sess.Connect(ctx); err != nil {
		t.Fatal(err)
	}

	rec, err := Create(ctx, sess)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Address != "192.168.1.1" {
		t.Errorf("Address = %s", rec.Address)
	}
	if !rec.Simulated {
		t.Error("record from mock session should be marked simulated")
	}
	if !strings.Contains(rec.Config, "set system host-name vSRX-Mock") {
		t.Errorf("config snapshot missing base state:\n%s", rec.Config)
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestCreate_SessionNotConnected(t *testing.T) {
	sess := device.NewMockSession("192.168.1.1")

	_, err := Create(context.Background(), sess)
	if err == nil {
		t.Fatal("expected error for unconnected session")
	}
	var berr *Error
	if !errors.As(err, &berr) {
		t.Errorf("error type = %T, want *backup.Error", err)
	}
}

func TestStore_SaveAndList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ctx := context.Background()
	sess := device.NewMockSession("192.168.1.1")
	sess.Connect(ctx)

	rec, err := Create(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}

	path, err := store.Save(rec)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, ".conf") {
		t.Errorf("path = %s, want .conf suffix", path)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("List returned %d names, want 1", len(names))
	}
	if !strings.HasPrefix(names[0], "192.168.1.1-") {
		t.Errorf("name = %s, want address prefix", names[0])
	}
}
