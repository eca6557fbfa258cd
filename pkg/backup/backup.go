// Package backup captures point-in-time configuration snapshots from a
// device session, independent of the main apply sequence.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/srxwire-net/srxwire/pkg/device"
)

// Record is one configuration snapshot.
type Record struct {
	Address   string    `json:"device_address"`
	Simulated bool      `json:"simulated"`
	Timestamp time.Time `json:"timestamp"`
	Config    string    `json:"configuration"`
}

// Error wraps a failed backup attempt.
type Error struct {
	Address string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backup of %s failed: %v", e.Address, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Create queries the session for its committed configuration and wraps it
// with a timestamp. The session must already be connected.
func Create(ctx context.Context, sess device.Session) (*Record, error) {
	cfg, err := sess.RunningConfig(ctx)
	if err != nil {
		return nil, &Error{Address: sess.Address(), Err: err}
	}

	simulated := false
	if f := sess.Facts(); f != nil {
		simulated = f.Mock
	}

	return &Record{
		Address:   sess.Address(),
		Simulated: simulated,
		Timestamp: time.Now(),
		Config:    cfg,
	}, nil
}

// Store persists backup records as flat files in a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the record and returns the file path.
func (s *Store) Save(rec *Record) (string, error) {
	name := fmt.Sprintf("%s-%s.conf",
		sanitizeAddress(rec.Address),
		rec.Timestamp.Format("20060102-150405"))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, []byte(rec.Config), 0644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return path, nil
}

// List returns the stored backup file names, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".conf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func sanitizeAddress(addr string) string {
	r := strings.NewReplacer(":", "_", "/", "_")
	return r.Replace(addr)
}
