package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.srxwire/settings.json.

Settings provide defaults for flags and enable optional sinks:
  - default_device:  Used when -d is not specified
  - inventory_path:  Device inventory location (default ~/.srxwire/devices.yaml)
  - audit_log_path:  Audit log location (default ~/.srxwire/audit.log)
  - backup_dir:      Where configuration backups are persisted
  - redis_addr:      Enables the Redis audit sink (host:port)

Examples:
  srxwire settings show
  srxwire settings set device branch-fw
  srxwire settings set backup_dir ~/.srxwire/backups
  srxwire settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SETTING\tVALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(w, "%s\t%s\n", name, value)
		}

		printSetting("default_device", s.DefaultDevice)
		printSetting("inventory_path", s.InventoryPath)
		printSetting("audit_log_path", s.AuditLogPath)
		printSetting("backup_dir", s.BackupDir)
		printSetting("redis_addr", s.RedisAddr)

		return w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Available settings:
  device          - Default device profile (-d flag default)
  inventory_path  - Device inventory file location
  audit_log_path  - Audit log file location
  backup_dir      - Backup directory (enables persisted backups)
  redis_addr      - Redis address (enables the Redis audit sink)

Examples:
  srxwire settings set device branch-fw
  srxwire settings set redis_addr localhost:6379`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]
		value := args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		switch setting {
		case "device", "default_device":
			s.DefaultDevice = value
			fmt.Printf("Default device set to: %s\n", value)
		case "inventory", "inventory_path":
			s.InventoryPath = value
			fmt.Printf("Inventory path set to: %s\n", value)
		case "audit", "audit_log_path":
			s.AuditLogPath = value
			fmt.Printf("Audit log path set to: %s\n", value)
		case "backup_dir":
			s.BackupDir = value
			fmt.Printf("Backup directory set to: %s\n", value)
		case "redis_addr":
			s.RedisAddr = value
			fmt.Printf("Redis address set to: %s\n", value)
		default:
			return fmt.Errorf("unknown setting: %s (valid: device, inventory_path, audit_log_path, backup_dir, redis_addr)", setting)
		}

		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		var value string
		switch args[0] {
		case "device", "default_device":
			value = s.DefaultDevice
		case "inventory", "inventory_path":
			value = s.InventoryPath
		case "audit", "audit_log_path":
			value = s.AuditLogPath
		case "backup_dir":
			value = s.BackupDir
		case "redis_addr":
			value = s.RedisAddr
		default:
			return fmt.Errorf("unknown setting: %s (valid: device, inventory_path, audit_log_path, backup_dir, redis_addr)", args[0])
		}

		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
