// Package inventory loads the YAML device inventory: named device profiles
// the CLI and API can address instead of repeating connection parameters.
package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile describes one managed SRX device.
type Profile struct {
	Address   string `yaml:"address"`
	Username  string `yaml:"username,omitempty"`
	Interface string `yaml:"interface,omitempty"` // default target interface
	Zone      string `yaml:"zone,omitempty"`      // default security zone
	Simulate  bool   `yaml:"simulate,omitempty"`
}

// Defaults are applied to profiles that leave a field empty.
type Defaults struct {
	Username  string `yaml:"username,omitempty"`
	Interface string `yaml:"interface,omitempty"`
	Zone      string `yaml:"zone,omitempty"`
}

// Inventory is the parsed devices file.
type Inventory struct {
	Defaults Defaults            `yaml:"defaults"`
	Devices  map[string]*Profile `yaml:"devices"`
}

// Load reads and validates a YAML inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}

	for name, p := range inv.Devices {
		if p == nil {
			return nil, fmt.Errorf("inventory %s: device %q has no body", path, name)
		}
		if p.Address == "" && !p.Simulate {
			return nil, fmt.Errorf("inventory %s: device %q needs an address", path, name)
		}
		inv.applyDefaults(p)
	}
	return &inv, nil
}

func (inv *Inventory) applyDefaults(p *Profile) {
	if p.Username == "" {
		p.Username = inv.Defaults.Username
	}
	if p.Interface == "" {
		p.Interface = inv.Defaults.Interface
	}
	if p.Zone == "" {
		p.Zone = inv.Defaults.Zone
	}
}

// Get returns the named device profile.
func (inv *Inventory) Get(name string) (*Profile, error) {
	p, ok := inv.Devices[name]
	if !ok {
		return nil, fmt.Errorf("device %q not in inventory", name)
	}
	return p, nil
}

// Names returns the device names, sorted.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Devices))
	for name := range inv.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
