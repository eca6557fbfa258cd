package engine

import "fmt"

// Directive templates. The emitted text must match the device's native
// configuration-statement syntax byte-for-byte: in simulated mode the
// command list is displayed to the caller as authoritative evidence of
// what would have been sent.
const (
	tmplInterfaceAddress = "set interfaces %s unit 0 family inet address %s"
	tmplInterfaceDesc    = "set interfaces %s unit 0 description 'Automated configuration'"
	tmplZoneMembership   = "set security zones security-zone %s interfaces %s.0"
	tmplPolicyMatch      = "set security policies from-zone %s to-zone untrust policy %s match %s"
	tmplPolicyPermit     = "set security policies from-zone %s to-zone untrust policy %s then permit"
)

// interfaceCommands returns the directives for the ConfigureIP step.
func interfaceCommands(ifname, cidr string) []string {
	return []string{
		fmt.Sprintf(tmplInterfaceAddress, ifname, cidr),
		fmt.Sprintf(tmplInterfaceDesc, ifname),
	}
}

// zoneCommands returns the directives for the AssignZone step.
func zoneCommands(zone, ifname string) []string {
	return []string{
		fmt.Sprintf(tmplZoneMembership, zone, ifname),
	}
}

// policyCommands returns the directives for the CreatePolicies step. Policy
// names are derived from the zone pair: traffic is permitted from the
// request's zone to the implicit untrust zone, HTTP always, HTTPS when
// requested.
func policyCommands(zone string, includeHTTPS bool) []string {
	cmds := permitPolicy(zone, "allow-http", "junos-http")
	if includeHTTPS {
		cmds = append(cmds, permitPolicy(zone, "allow-https", "junos-https")...)
	}
	return cmds
}

func permitPolicy(zone, policy, application string) []string {
	return []string{
		fmt.Sprintf(tmplPolicyMatch, zone, policy, "source-address any"),
		fmt.Sprintf(tmplPolicyMatch, zone, policy, "destination-address any"),
		fmt.Sprintf(tmplPolicyMatch, zone, policy, "application "+application),
		fmt.Sprintf(tmplPolicyPermit, zone, policy),
	}
}
