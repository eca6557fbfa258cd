// Package util provides logging, validation, and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for session and engine preconditions
var (
	ErrNotConnected     = errors.New("device not connected")
	ErrSessionClosed    = errors.New("session closed")
	ErrValidationFailed = errors.New("validation failed")
	ErrDeviceBusy       = errors.New("configuration already in progress for device")
)

// ValidationError represents one or more request validation failures.
// Validation errors are rejected before any session work and are never
// recorded as configuration attempts.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// DeviceBusyError is returned when a configuration attempt targets a device
// that already has an attempt in flight.
type DeviceBusyError struct {
	Address string
}

func (e *DeviceBusyError) Error() string {
	return fmt.Sprintf("device %s: configuration attempt already in progress", e.Address)
}

func (e *DeviceBusyError) Unwrap() error {
	return ErrDeviceBusy
}
