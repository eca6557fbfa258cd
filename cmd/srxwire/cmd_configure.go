package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srxwire-net/srxwire/pkg/cli"
	"github.com/srxwire-net/srxwire/pkg/engine"
)

var (
	targetInterface string
	interfaceIP     string
	securityZone    string
	includeHTTPS    bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Apply interface, zone, and policy configuration",
	Long: `Configure an SRX interface end to end: assign an IP address, place the
interface in a security zone, and create the zone's outbound and management
policies. Runs the staged sequence:

  Connect -> Backup -> LoadInterfaceConfig -> ConfigureIP -> AssignZone
          -> CreatePolicies -> Validate -> Commit

Any step failure rolls the candidate configuration back; nothing is
committed on a partial run.

Examples:
  srxwire -d branch-fw configure -i ge-0/0/0 --ip 192.168.10.1/24 -z trust
  srxwire --simulate configure -i ge-0/0/1 --ip 10.1.1.1/24 -z dmz --https`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildConfigureRequest()
		if err != nil {
			return err
		}

		eng, done, err := newEngine(progressOption())
		if err != nil {
			return err
		}
		defer done()

		if !jsonOutput {
			fmt.Printf("Configuring %s on %s:\n", req.Interface, req.Address)
		}

		outcome, err := eng.Configure(context.Background(), req)
		if err != nil {
			return err
		}

		return printOutcome(outcome)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Dry-run a configuration (commit check, nothing committed)",
	Long: `Run the same staged sequence as configure up to and including the commit
check, then roll the candidate back. The device configuration is never
changed. Useful for verifying a change before a maintenance window.

Examples:
  srxwire -d branch-fw validate -i ge-0/0/0 --ip 192.168.10.1/24 -z trust`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildConfigureRequest()
		if err != nil {
			return err
		}

		eng, done, err := newEngine(progressOption())
		if err != nil {
			return err
		}
		defer done()

		if !jsonOutput {
			fmt.Printf("Validating %s on %s (dry run):\n", req.Interface, req.Address)
		}

		outcome, err := eng.Validate(context.Background(), req)
		if err != nil {
			return err
		}

		return printOutcome(outcome)
	},
}

// buildConfigureRequest resolves the target and fills in the configuration
// fields shared by configure and validate.
func buildConfigureRequest() (*engine.Request, error) {
	req, err := resolveTarget()
	if err != nil {
		return nil, err
	}
	if targetInterface != "" {
		req.Interface = targetInterface
	}
	if interfaceIP != "" {
		req.InterfaceIP = interfaceIP
	}
	if securityZone != "" {
		req.Zone = securityZone
	}
	req.IncludeHTTPS = includeHTTPS

	if err := ensurePassword(req); err != nil {
		return nil, err
	}
	return req, nil
}

// progressOption prints step progress lines as steps complete, unless the
// caller asked for JSON.
func progressOption() engine.Option {
	if jsonOutput {
		return engine.WithProgress(nil)
	}
	return engine.WithProgress(func(r engine.StepResult) {
		fmt.Println(cli.StepLine(r))
	})
}

// printOutcome renders the outcome and maps failure to a non-zero exit.
func printOutcome(outcome *engine.Outcome) error {
	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(outcome); err != nil {
			return err
		}
	} else {
		fmt.Println()
		fmt.Println(cli.OutcomeSummary(outcome))
	}
	if !outcome.Success {
		return fmt.Errorf("step %s failed", outcome.FailedStep)
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{configureCmd, validateCmd} {
		cmd.Flags().StringVarP(&targetInterface, "interface", "i", "", "Interface to configure (e.g. ge-0/0/0)")
		cmd.Flags().StringVar(&interfaceIP, "ip", "", "Interface address in CIDR form (e.g. 192.168.10.1/24)")
		cmd.Flags().StringVarP(&securityZone, "zone", "z", "", "Security zone for the interface")
		cmd.Flags().BoolVar(&includeHTTPS, "https", false, "Also permit HTTPS to the zone")
	}
}
