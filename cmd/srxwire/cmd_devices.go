package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/cli"
	"github.com/srxwire-net/srxwire/pkg/inventory"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List inventory device profiles",
	Long: `List the device profiles defined in the YAML inventory
(default ~/.srxwire/devices.yaml, override with settings set inventory_path).

Example inventory:

  defaults:
    username: admin
    zone: trust
  devices:
    branch-fw:
      address: 10.0.0.1
      interface: ge-0/0/0
    lab:
      simulate: true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := inventory.Load(userSettings.GetInventoryPath())
		if err != nil {
			return fmt.Errorf("loading inventory: %w", err)
		}

		names := inv.Names()
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(inv)
		}
		if len(names) == 0 {
			fmt.Println("No devices in inventory")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tADDRESS\tUSERNAME\tINTERFACE\tZONE\tMODE")
		for _, name := range names {
			p, err := inv.Get(name)
			if err != nil {
				continue
			}
			mode := "ssh"
			if p.Simulate {
				mode = cli.Yellow("simulated")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				name, p.Address, p.Username, p.Interface, p.Zone, mode)
		}
		return w.Flush()
	},
}

func init() {
	devicesCmd.GroupID = "meta"
	rootCmd.AddCommand(devicesCmd)
}
