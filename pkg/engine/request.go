// Package engine drives the staged SRX configuration sequence: it turns a
// validated configuration request into an ordered series of step results
// against a device session (real or simulated) and a committed device state.
package engine

import (
	"github.com/srxwire-net/srxwire/pkg/util"
)

// Request describes one configuration attempt. Immutable once submitted.
type Request struct {
	// Device access
	Address  string `json:"address"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
	Simulate bool   `json:"simulate"`

	// Target configuration
	Interface   string `json:"interface"`
	InterfaceIP string `json:"interface_ip"` // CIDR, e.g. 192.168.10.1/24
	Zone        string `json:"zone"`

	// IncludeHTTPS additionally permits HTTPS with an allow-https policy.
	IncludeHTTPS bool `json:"include_https,omitempty"`
}

// Validate checks the request before any session work. A failed validation
// is never recorded as a configuration attempt.
func (r *Request) Validate() error {
	var b util.ValidationBuilder

	b.Add(r.Address != "", "device address is required")
	b.Add(r.Interface != "", "interface name is required")
	b.Add(r.Zone != "", "security zone is required")

	if r.InterfaceIP == "" {
		b.AddError("interface IP is required")
	} else if !util.IsValidIPv4CIDR(r.InterfaceIP) {
		b.AddErrorf("interface IP %q is not valid IPv4 CIDR notation", r.InterfaceIP)
	}

	if !r.Simulate {
		b.Add(r.Username != "", "username is required for real device access")
		b.Add(r.Password != "", "password is required for real device access")
	}

	return b.Build()
}

// Snapshot returns a copy of the request safe for audit storage and display.
// Credentials are elided.
func (r *Request) Snapshot() Request {
	snap := *r
	snap.Password = ""
	return snap
}
