// Package device provides the session abstraction for configuring SRX
// firewalls, with a real SSH-backed implementation and an in-memory mock
// that accepts the same command set without touching hardware.
package device

import (
	"context"
	"time"
)

// State tracks the lifecycle of a session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnected    State = "connected"
	StateFailed       State = "failed"
)

// Facts holds device identity information gathered at connect time.
type Facts struct {
	Hostname string `json:"hostname"`
	Model    string `json:"model"`
	Version  string `json:"version"`
	Serial   string `json:"serial"`
	Uptime   string `json:"uptime"`
	Mock     bool   `json:"mock_mode,omitempty"`
}

// Credentials holds authentication parameters for a real session.
// Ignored by the mock.
type Credentials struct {
	Username string
	Password string
}

// DefaultConnectTimeout bounds session establishment and per-command I/O.
const DefaultConnectTimeout = 30 * time.Second

// Session is one connection (real or simulated) to an SRX device.
//
// Directives accepted by Apply are staged, not committed: nothing takes
// effect on the device until Commit, which applies the whole staged batch
// atomically. Rollback discards staged-but-uncommitted directives.
type Session interface {
	// Connect establishes the session and returns device facts.
	// Idempotent: connecting an already-connected session returns the
	// cached facts.
	Connect(ctx context.Context) (*Facts, error)

	// Apply stages one configuration directive.
	Apply(directive string) error

	// Check validates the staged batch without committing it.
	Check(ctx context.Context) error

	// Commit atomically applies all staged directives. On failure no
	// partial directive set takes effect.
	Commit(ctx context.Context) error

	// Rollback discards staged-but-uncommitted directives.
	Rollback() error

	// RunningConfig returns the last committed configuration.
	RunningConfig(ctx context.Context) (string, error)

	// Facts returns the facts gathered at connect time, or nil if the
	// session never connected.
	Facts() *Facts

	// Address returns the device address this session targets.
	Address() string

	// State returns the current session state.
	State() State

	// Close releases the session. Safe to call multiple times.
	Close() error
}
