// Package settings manages persistent user settings for the srxwire CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultDevice is the inventory device used when -d is not specified
	DefaultDevice string `json:"default_device,omitempty"`

	// InventoryPath overrides the default device inventory location
	InventoryPath string `json:"inventory_path,omitempty"`

	// AuditLogPath enables the JSON-lines audit file sink when set
	AuditLogPath string `json:"audit_log_path,omitempty"`

	// BackupDir is where configuration backups are written
	BackupDir string `json:"backup_dir,omitempty"`

	// RedisAddr enables the Redis audit sink when set (host:port)
	RedisAddr string `json:"redis_addr,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "srxwire_settings.json"
	}
	return filepath.Join(home, ".srxwire", "settings.json")
}

// DefaultInventoryPath returns the default device inventory location
func DefaultInventoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devices.yaml"
	}
	return filepath.Join(home, ".srxwire", "devices.yaml")
}

// DefaultAuditLogPath returns the default audit log location
func DefaultAuditLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "srxwire_audit.log"
	}
	return filepath.Join(home, ".srxwire", "audit.log")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetInventoryPath returns the inventory path (with fallback)
func (s *Settings) GetInventoryPath() string {
	if s.InventoryPath != "" {
		return s.InventoryPath
	}
	return DefaultInventoryPath()
}

// GetAuditLogPath returns the audit log path (with fallback)
func (s *Settings) GetAuditLogPath() string {
	if s.AuditLogPath != "" {
		return s.AuditLogPath
	}
	return DefaultAuditLogPath()
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
