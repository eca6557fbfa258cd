package device

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"
	"sync"

	"github.com/srxwire-net/srxwire/pkg/util"
)

// Mock device identity constants. Facts are deterministic so repeated
// simulated connections yield identical results.
const (
	mockHostname = "vSRX-Mock"
	mockModel    = "vSRX"
	mockVersion  = "20.4R3.8"
	mockUptime   = "45 days, 12:34:56"
)

// mockInterface is the simulated state of one interface.
type mockInterface struct {
	Status      string
	IP          string
	Zone        string
	Description string
}

// MockSession implements Session entirely in memory. Connect always
// succeeds; Apply and Commit append to an internal command list instead of
// mutating real device state, so callers can display exactly what would
// have been sent to hardware.
type MockSession struct {
	address string

	mu         sync.Mutex
	facts      *Facts
	state      State
	staged     []string
	committed  []string
	interfaces map[string]*mockInterface
	zones      map[string][]string
	policies   []string
	closed     bool
}

// NewMockSession creates a simulated session for the given address.
func NewMockSession(address string) *MockSession {
	return &MockSession{
		address: address,
		state:   StateDisconnected,
		interfaces: map[string]*mockInterface{
			"ge-0/0/0": {Status: "up", IP: "10.0.0.1/24", Zone: "untrust", Description: "WAN Interface"},
			"ge-0/0/1": {Status: "down", IP: "unassigned", Description: "LAN Interface"},
		},
		zones: map[string][]string{
			"trust":   {},
			"untrust": {"ge-0/0/0.0"},
		},
	}
}

// Connect succeeds immediately with deterministic synthetic facts. The
// serial number is derived from the requested address.
func (s *MockSession) Connect(ctx context.Context) (*Facts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, util.ErrSessionClosed
	}
	if s.facts == nil {
		s.facts = &Facts{
			Hostname: mockHostname,
			Model:    mockModel,
			Version:  mockVersion,
			Serial:   mockSerial(s.address),
			Uptime:   mockUptime,
			Mock:     true,
		}
	}
	s.state = StateConnected
	return s.facts, nil
}

// Apply stages a directive. The mock only rejects malformed statements, to
// guarantee demonstrability without hardware.
func (s *MockSession) Apply(directive string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return util.ErrNotConnected
	}

	directive = strings.TrimSpace(directive)
	if err := validateDirective(directive); err != nil {
		return err
	}

	s.staged = append(s.staged, directive)
	return nil
}

// Check always passes for a well-formed staged batch.
func (s *MockSession) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return util.ErrNotConnected
	}
	return nil
}

// Commit moves the staged batch to the committed list and updates the
// simulated device state.
func (s *MockSession) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return util.ErrNotConnected
	}

	for _, d := range s.staged {
		s.applyToState(d)
	}
	s.committed = append(s.committed, s.staged...)
	s.staged = nil
	return nil
}

// Rollback discards staged-but-uncommitted directives.
func (s *MockSession) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = nil
	return nil
}

// RunningConfig renders the committed simulated configuration as
// display-set text.
func (s *MockSession) RunningConfig(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return "", util.ErrNotConnected
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("set system host-name %s\n", mockHostname))
	for name, intf := range s.interfaces {
		if intf.IP != "" && intf.IP != "unassigned" {
			sb.WriteString(fmt.Sprintf("set interfaces %s unit 0 family inet address %s\n", name, intf.IP))
		}
	}
	for zone, members := range s.zones {
		for _, m := range members {
			sb.WriteString(fmt.Sprintf("set security zones security-zone %s interfaces %s\n", zone, m))
		}
	}
	for _, d := range s.committed {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// CommittedCommands returns a copy of all committed directives, in order.
func (s *MockSession) CommittedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.committed...)
}

// StagedCommands returns a copy of the staged-but-uncommitted directives.
func (s *MockSession) StagedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.staged...)
}

// Facts returns the synthetic facts, or nil before the first Connect.
func (s *MockSession) Facts() *Facts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facts
}

// Address returns the simulated device address.
func (s *MockSession) Address() string {
	return s.address
}

// State returns the current session state.
func (s *MockSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases the session. No-op after the first call.
func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.state = StateDisconnected
	s.staged = nil
	return nil
}

// applyToState folds one committed directive into the simulated device
// state so RunningConfig reflects what a real device would show.
func (s *MockSession) applyToState(directive string) {
	fields := strings.Fields(directive)
	if len(fields) < 2 || fields[0] != "set" {
		return
	}

	switch fields[1] {
	case "interfaces":
		// set interfaces <ifname> unit 0 family inet address <cidr>
		// set interfaces <ifname> unit 0 description '...'
		if len(fields) < 5 {
			return
		}
		name := fields[2]
		intf, ok := s.interfaces[name]
		if !ok {
			intf = &mockInterface{}
			s.interfaces[name] = intf
		}
		if len(fields) >= 9 && fields[7] == "address" {
			intf.IP = fields[8]
			intf.Status = "up"
		}
		if len(fields) >= 7 && fields[5] == "description" {
			intf.Description = strings.Trim(strings.Join(fields[6:], " "), "'")
		}
	case "security":
		if len(fields) >= 7 && fields[2] == "zones" && fields[5] == "interfaces" {
			// set security zones security-zone <zone> interfaces <ifname>.0
			zone, member := fields[4], fields[6]
			for _, m := range s.zones[zone] {
				if m == member {
					return
				}
			}
			s.zones[zone] = append(s.zones[zone], member)
			if intf, ok := s.interfaces[strings.TrimSuffix(member, ".0")]; ok {
				intf.Zone = zone
			}
		} else if len(fields) >= 3 && fields[2] == "policies" {
			s.policies = append(s.policies, directive)
		}
	}
}

// mockSerial derives a stable serial number from the device address.
func mockSerial(address string) string {
	return fmt.Sprintf("VM%09d", crc32.ChecksumIEEE([]byte(address))%1000000000)
}
