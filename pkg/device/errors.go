package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for connection failure classification
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrUnreachable    = errors.New("device unreachable")
	ErrTimeout        = errors.New("connection timed out")
)

// ConnectionError wraps a transport or protocol-level connect failure.
// Kind is one of the sentinel errors above.
type ConnectionError struct {
	Address string
	Kind    error
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v: %v", e.Address, e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Kind
}

// ApplyError indicates a directive was rejected before commit.
type ApplyError struct {
	Directive string
	Reason    string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("directive rejected: %s (%s)", e.Directive, e.Reason)
}

// CommitError indicates the staged batch was rejected atomically at commit
// time. No partial directive set took effect.
type CommitError struct {
	Address string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit on %s failed: %v", e.Address, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
