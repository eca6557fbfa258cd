package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/backup"
	"github.com/srxwire-net/srxwire/pkg/cli"
	"github.com/srxwire-net/srxwire/pkg/device"
)

var backupShow bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Capture a configuration snapshot",
	Long: `Fetch the device's committed configuration and save it under the backup
directory (settings: backup_dir). The same snapshot is taken automatically
as the Backup step of every configure run.

Examples:
  srxwire -d branch-fw backup
  srxwire -d branch-fw backup --show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := resolveTarget()
		if err != nil {
			return err
		}
		if err := ensurePassword(req); err != nil {
			return err
		}

		eng, done, err := newEngine()
		if err != nil {
			return err
		}
		defer done()

		creds := device.Credentials{Username: req.Username, Password: req.Password}
		rec, err := eng.Backup(context.Background(), req.Address, creds, req.Simulate)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(rec)
		}
		if backupShow {
			fmt.Print(rec.Config)
			return nil
		}

		fmt.Println(cli.Green(fmt.Sprintf("Backup of %s captured at %s (%d bytes)",
			rec.Address, rec.Timestamp.Format("2006-01-02 15:04:05"), len(rec.Config))))
		if userSettings.BackupDir == "" {
			fmt.Println(cli.Yellow("No backup_dir configured; snapshot not persisted. Set one with:"))
			fmt.Println("  srxwire settings set backup_dir ~/.srxwire/backups")
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userSettings.BackupDir == "" {
			return fmt.Errorf("no backup_dir configured: srxwire settings set backup_dir <dir>")
		}
		store, err := backup.NewStore(userSettings.BackupDir)
		if err != nil {
			return err
		}
		files, err := store.List()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No backups found")
			return nil
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().BoolVar(&backupShow, "show", false, "Print the configuration to stdout instead of a summary")
	backupCmd.AddCommand(backupListCmd)
}
