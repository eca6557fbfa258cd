package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/cli"
	"github.com/srxwire-net/srxwire/pkg/device"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Test connectivity and show device facts",
	Long: `Open a session to the device, gather identifying facts (hostname, model,
version, serial, uptime), and close the session. No configuration is read
or changed beyond the fact-gathering show commands.

Examples:
  srxwire -d branch-fw status
  srxwire --address 10.0.0.1 -u admin status`,
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
		facts, err := eng.TestConnection(context.Background(), req.Address, creds, req.Simulate)
		if err != nil {
			return fmt.Errorf("connection to %s failed: %w", req.Address, err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(facts)
		}

		fmt.Println(cli.Green(fmt.Sprintf("Connected to %s", req.Address)))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Hostname:\t%s\n", facts.Hostname)
		fmt.Fprintf(w, "Model:\t%s\n", facts.Model)
		fmt.Fprintf(w, "Version:\t%s\n", facts.Version)
		fmt.Fprintf(w, "Serial:\t%s\n", facts.Serial)
		fmt.Fprintf(w, "Uptime:\t%s\n", facts.Uptime)
		if facts.Mock {
			fmt.Fprintf(w, "Mode:\t%s\n", cli.Yellow("simulated"))
		}
		return w.Flush()
	},
}
