package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/audit"
	"github.com/srxwire-net/srxwire/pkg/cli"
)

var (
	historyDevice   string
	historyLimit    int
	historyFailures bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past configuration attempts",
	Long: `View the audit log of configuration attempts.

Every attempt that reaches a device session is recorded with:
  - Timestamp and target device
  - Requested interface, IP, and zone
  - Success/failure and the failed step, if any

Entries are read from the audit log file; when a Redis sink is configured
(settings: redis_addr), it is used instead.

Examples:
  srxwire history
  srxwire history --device 10.0.0.1 --limit 20
  srxwire history --failures`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadHistory()
		if err != nil {
			return err
		}

		// Filter, newest last
		var filtered []*audit.Entry
		for _, e := range entries {
			if historyDevice != "" && e.Request.Address != historyDevice {
				continue
			}
			if historyFailures && e.Outcome != nil && e.Outcome.Success {
				continue
			}
			filtered = append(filtered, e)
		}
		if historyLimit > 0 && len(filtered) > historyLimit {
			filtered = filtered[len(filtered)-historyLimit:]
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(filtered)
		}

		if len(filtered) == 0 {
			fmt.Println("No configuration attempts found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tDEVICE\tINTERFACE\tIP\tZONE\tSTATUS")
		fmt.Fprintln(w, "---------\t------\t---------\t--\t----\t------")

		for _, e := range filtered {
			status := cli.Green("ok")
			if e.Outcome != nil {
				if !e.Outcome.Success {
					status = cli.Red(fmt.Sprintf("failed (%s)", e.Outcome.FailedStep))
				} else if e.Outcome.DryRun {
					status = cli.Yellow("dry-run")
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Request.Address,
				e.Request.Interface,
				e.Request.InterfaceIP,
				e.Request.Zone,
				status,
			)
		}
		return w.Flush()
	},
}

// loadHistory reads entries from Redis when configured, else the audit file.
func loadHistory() ([]*audit.Entry, error) {
	if userSettings.RedisAddr != "" {
		sink, err := audit.NewRedisSink(userSettings.RedisAddr, "")
		if err != nil {
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
		defer sink.Close()
		return sink.ReadAll()
	}
	return audit.ReadFile(userSettings.GetAuditLogPath())
}

func init() {
	historyCmd.Flags().StringVar(&historyDevice, "device", "", "Filter by device address")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 100, "Maximum attempts to show")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "Show only failed attempts")
}
