package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/srxwire-net/srxwire/pkg/util"
)

// SSHSession drives a real SRX over the Junos CLI via SSH.
//
// Directives are buffered locally; Commit opens a single CLI session,
// enters exclusive configuration mode, loads the batch, and commits. An
// exclusive candidate that exits without committing is discarded by the
// device, which gives the all-or-nothing batch semantics.
type SSHSession struct {
	address string
	creds   Credentials
	timeout time.Duration

	mu     sync.Mutex
	client *ssh.Client
	facts  *Facts
	staged []string
	state  State
	closed bool
}

// NewSSHSession creates a session for the device at address (host or
// host:port; port 22 is assumed when absent). No I/O happens until Connect.
func NewSSHSession(address string, creds Credentials, timeout time.Duration) *SSHSession {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &SSHSession{
		address: address,
		creds:   creds,
		timeout: timeout,
		state:   StateDisconnected,
	}
}

// Connect dials the device and gathers facts. Repeated calls on a live
// session return the cached facts.
func (s *SSHSession) Connect(ctx context.Context) (*Facts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, util.ErrSessionClosed
	}
	if s.state == StateConnected && s.client != nil {
		return s.facts, nil
	}

	config := &ssh.ClientConfig{
		User:    s.creds.Username,
		Auth:    []ssh.AuthMethod{ssh.Password(s.creds.Password)},
		Timeout: s.timeout,
		// Lab/automation environment — production would verify host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := s.address
	if !strings.Contains(addr, ":") {
		addr = addr + ":22"
	}

	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		s.state = StateFailed
		return nil, classifyConnectError(s.address, err)
	}
	s.client = client
	s.state = StateConnected

	facts, err := s.gatherFacts(ctx)
	if err != nil {
		client.Close()
		s.client = nil
		s.state = StateFailed
		return nil, &ConnectionError{Address: s.address, Kind: ErrUnreachable, Err: err}
	}
	s.facts = facts

	util.WithDevice(s.address).Infof("Connected to %s (%s %s)", facts.Hostname, facts.Model, facts.Version)
	return facts, nil
}

// Apply stages one directive. Directives must be Junos set-style statements.
func (s *SSHSession) Apply(directive string) error {
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

// Check runs a commit check against the staged batch without committing.
func (s *SSHSession) Check(ctx context.Context) error {
	s.mu.Lock()
	staged := append([]string(nil), s.staged...)
	s.mu.Unlock()

	return s.runConfigScript(ctx, staged, "commit check")
}

// Commit applies the staged batch atomically and clears the buffer.
func (s *SSHSession) Commit(ctx context.Context) error {
	s.mu.Lock()
	staged := append([]string(nil), s.staged...)
	s.mu.Unlock()

	comment := fmt.Sprintf("commit comment \"srxwire automation %s\" and-quit",
		time.Now().Format(time.RFC3339))
	if err := s.runConfigScript(ctx, staged, comment); err != nil {
		return &CommitError{Address: s.address, Err: err}
	}

	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
	return nil
}

// Rollback discards the staged-but-uncommitted directives. Nothing is loaded
// on the device until Commit, so this only clears the local buffer.
func (s *SSHSession) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.staged)
	s.staged = nil
	if n > 0 {
		util.WithDevice(s.address).Infof("Rolled back %d staged directives", n)
	}
	return nil
}

// RunningConfig returns the committed configuration in display-set form.
func (s *SSHSession) RunningConfig(ctx context.Context) (string, error) {
	return s.exec(ctx, "show configuration | display set")
}

// Facts returns the facts gathered at connect time.
func (s *SSHSession) Facts() *Facts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facts
}

// Address returns the target device address.
func (s *SSHSession) Address() string {
	return s.address
}

// State returns the current session state.
func (s *SSHSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases the SSH connection. No-op after the first call.
func (s *SSHSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.state = StateDisconnected
	s.staged = nil

	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

// runConfigScript pipes an exclusive configuration session through the Junos
// CLI: enter exclusive mode, load the directives, then run final (commit,
// commit check, ...). Exiting exclusive mode without a commit discards the
// candidate.
func (s *SSHSession) runConfigScript(ctx context.Context, directives []string, final string) error {
	if len(directives) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("configure exclusive\n")
	for _, d := range directives {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	sb.WriteString(final)
	sb.WriteString("\nexit\n")

	out, err := s.execStdin(ctx, "cli", sb.String())
	if err != nil {
		return err
	}
	if idx := strings.Index(out, "error:"); idx >= 0 {
		line := out[idx:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		return fmt.Errorf("device reported %s", strings.TrimSpace(line))
	}
	return nil
}

// exec runs a single operational-mode command.
func (s *SSHSession) exec(ctx context.Context, cmd string) (string, error) {
	return s.execStdin(ctx, cmd, "")
}

// execStdin runs cmd in a fresh SSH session, optionally feeding stdin, and
// returns the combined output. The session is created per call (stateless).
func (s *SSHSession) execStdin(ctx context.Context, cmd, stdin string) (string, error) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil {
		return "", util.ErrNotConnected
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	if stdin != "" {
		session.Stdin = strings.NewReader(stdin)
	}

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("SSH exec %q: %w", cmd, r.err)
		}
		return string(r.out), nil
	case <-ctx.Done():
		session.Close()
		return "", fmt.Errorf("SSH exec %q: %w", cmd, ctx.Err())
	}
}

// gatherFacts queries device identity via operational commands.
func (s *SSHSession) gatherFacts(ctx context.Context) (*Facts, error) {
	facts := &Facts{
		Hostname: "unknown",
		Model:    "unknown",
		Version:  "unknown",
		Serial:   "unknown",
		Uptime:   "unknown",
	}

	out, err := s.exec(ctx, "show version")
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Hostname:"):
			facts.Hostname = strings.TrimSpace(strings.TrimPrefix(line, "Hostname:"))
		case strings.HasPrefix(line, "Model:"):
			facts.Model = strings.TrimSpace(strings.TrimPrefix(line, "Model:"))
		case strings.HasPrefix(line, "Junos:"):
			facts.Version = strings.TrimSpace(strings.TrimPrefix(line, "Junos:"))
		}
	}

	// Serial and uptime are best-effort; identity still useful without them.
	if out, err := s.exec(ctx, "show chassis hardware | match Chassis"); err == nil {
		fields := strings.Fields(out)
		if len(fields) >= 2 {
			facts.Serial = fields[1]
		}
	}
	if out, err := s.exec(ctx, "show system uptime | match booted"); err == nil {
		if i := strings.Index(out, "("); i >= 0 {
			if j := strings.Index(out[i:], ")"); j > 0 {
				facts.Uptime = out[i+1 : i+j]
			}
		}
	}

	return facts, nil
}

// validateDirective enforces Junos set-style statement shape.
func validateDirective(directive string) error {
	if directive == "" {
		return &ApplyError{Directive: directive, Reason: "empty directive"}
	}
	for _, prefix := range []string{"set ", "delete ", "deactivate ", "activate "} {
		if strings.HasPrefix(directive, prefix) {
			return nil
		}
	}
	return &ApplyError{Directive: directive, Reason: "not a configuration statement"}
}

// classifyConnectError maps transport errors onto the connection taxonomy.
func classifyConnectError(address string, err error) error {
	kind := ErrUnreachable
	msg := err.Error()

	switch {
	case strings.Contains(msg, "unable to authenticate"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "handshake failed"):
		kind = ErrAuthentication
	case isTimeout(err), strings.Contains(msg, "i/o timeout"):
		kind = ErrTimeout
	}

	return &ConnectionError{Address: address, Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	return false
}
