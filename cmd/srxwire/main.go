// Srxwire - Juniper SRX Configuration Automation
//
// A CLI tool for staged SRX configuration with:
//   - Interface IP, zone, and policy configuration in one run
//   - Automatic pre-change config backup and rollback on failure
//   - Simulation mode (no device required)
//   - Dry-run validation (commit check, nothing committed)
//   - Audit logging of every attempt
//
// Target flags select the device; commands act on that device:
//
//	srxwire -d <device> configure -i ge-0/0/0 --ip 192.168.10.1/24 -z trust
//	srxwire --address 10.0.0.1 --user admin status
//	srxwire --simulate configure -i ge-0/0/1 --ip 10.1.1.1/24 -z dmz
//
// Devices are named profiles from the YAML inventory (~/.srxwire/devices.yaml)
// or addressed directly with --address.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srxwire-net/srxwire/pkg/audit"
	"github.com/srxwire-net/srxwire/pkg/backup"
	"github.com/srxwire-net/srxwire/pkg/engine"
	"github.com/srxwire-net/srxwire/pkg/inventory"
	"github.com/srxwire-net/srxwire/pkg/settings"
	"github.com/srxwire-net/srxwire/pkg/util"
	"github.com/srxwire-net/srxwire/pkg/version"
)

var (
	// Target flags (device selectors)
	deviceName string // -d, --device (inventory profile)
	address    string // --address (direct)

	// Connection flags
	username string
	password string
	simulate bool

	// Output flags
	verbose    bool
	jsonOutput bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "srxwire",
	Short:             "Juniper SRX Configuration Automation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Srxwire configures Juniper SRX firewalls in a staged, audited sequence:
connect, backup, load interface config, assign IP and zone, create policies,
validate, commit. Any step failure rolls the candidate back.

  srxwire -d <device> configure -i <interface> --ip <cidr> -z <zone>
  srxwire --simulate configure -i ge-0/0/0 --ip 10.1.1.1/24 -z trust`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if deviceName == "" {
			deviceName = userSettings.DefaultDevice
		}

		// Quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Device profile from inventory (target selector)")
	rootCmd.PersistentFlags().StringVar(&address, "address", "", "Device address, overrides inventory (host[:port])")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "SSH username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "SSH password (prompted if omitted)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Run against an in-memory mock device")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "device", Title: "Device Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{configureCmd, validateCmd, statusCmd, backupCmd} {
		cmd.GroupID = "device"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{historyCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("srxwire dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("srxwire %s (%s)\n", version.Version, version.GitCommit)
		}
	},
}

// ============================================================================
// Target Resolution - Build a request from inventory profile + flags
// ============================================================================

// resolveTarget builds the base request from the inventory profile (if -d was
// given) overlaid with command-line flags. Flags always win.
func resolveTarget() (*engine.Request, error) {
	req := &engine.Request{}

	if deviceName != "" {
		inv, err := inventory.Load(userSettings.GetInventoryPath())
		if err != nil {
			return nil, fmt.Errorf("loading inventory: %w", err)
		}
		profile, err := inv.Get(deviceName)
		if err != nil {
			return nil, err
		}
		req.Address = profile.Address
		req.Username = profile.Username
		req.Interface = profile.Interface
		req.Zone = profile.Zone
		req.Simulate = profile.Simulate
	}

	if address != "" {
		req.Address = address
	}
	if username != "" {
		req.Username = username
	}
	if password != "" {
		req.Password = password
	}
	if simulate {
		req.Simulate = true
	}

	if req.Address == "" && !req.Simulate {
		return nil, fmt.Errorf("device required: use -d <device> or --address <host>")
	}
	if req.Simulate && req.Address == "" {
		req.Address = "simulated-device"
	}

	return req, nil
}

// ensurePassword prompts for the SSH password when connecting to a real
// device without one on the command line.
func ensurePassword(req *engine.Request) error {
	if req.Simulate || req.Password != "" {
		return nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return fmt.Errorf("password required: use --password or run interactively")
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", req.Username, req.Address)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	req.Password = string(raw)
	return nil
}

// ============================================================================
// Engine Construction - Wire audit sinks and backup store from settings
// ============================================================================

// newEngine builds an engine with the audit sinks and backup store the user
// settings enable. The returned closer flushes the audit sinks.
func newEngine(opts ...engine.Option) (*engine.Engine, func(), error) {
	var sinks []audit.Sink

	fileSink, err := audit.NewFileSink(userSettings.GetAuditLogPath(), audit.RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 10,
	})
	if err != nil {
		util.Warnf("Could not open audit log: %v", err)
	} else {
		sinks = append(sinks, fileSink)
	}

	if userSettings.RedisAddr != "" {
		redisSink, err := audit.NewRedisSink(userSettings.RedisAddr, "")
		if err != nil {
			util.Warnf("Could not connect Redis audit sink: %v", err)
		} else {
			sinks = append(sinks, redisSink)
		}
	}

	auditLog := audit.NewLog(sinks...)
	opts = append(opts, engine.WithRecorder(auditLog))

	if userSettings.BackupDir != "" {
		store, err := backup.NewStore(userSettings.BackupDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening backup dir: %w", err)
		}
		opts = append(opts, engine.WithBackupStore(store))
	}

	closer := func() {
		if err := auditLog.Close(); err != nil {
			util.Warnf("Closing audit log: %v", err)
		}
	}
	return engine.New(opts...), closer, nil
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help,
// or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}
