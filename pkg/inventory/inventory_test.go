package inventory

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleInventory = `defaults:
  username: admin
  interface: ge-0/0/1
  zone: trust

devices:
  lab-srx:
    address: 192.168.1.1
  branch-fw:
    address: 10.20.0.1
    username: netops
    zone: branch
  demo:
    simulate: true
`

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	inv, err := Load(writeInventory(t, sampleInventory))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lab, err := inv.Get("lab-srx")
	if err != nil {
		t.Fatal(err)
	}
	if lab.Username != "admin" || lab.Interface != "ge-0/0/1" || lab.Zone != "trust" {
		t.Errorf("defaults not applied: %+v", lab)
	}

	branch, _ := inv.Get("branch-fw")
	if branch.Username != "netops" {
		t.Errorf("explicit username overridden: %s", branch.Username)
	}
	if branch.Zone != "branch" {
		t.Errorf("explicit zone overridden: %s", branch.Zone)
	}
}

func TestLoad_SimulatedDeviceWithoutAddress(t *testing.T) {
	inv, err := Load(writeInventory(t, sampleInventory))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	demo, err := inv.Get("demo")
	if err != nil {
		t.Fatal(err)
	}
	if !demo.Simulate {
		t.Error("demo should be simulated")
	}
}

func TestLoad_RealDeviceRequiresAddress(t *testing.T) {
	_, err := Load(writeInventory(t, "devices:\n  broken:\n    username: admin\n"))
	if err == nil {
		t.Error("expected error for real device without address")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeInventory(t, "devices: [not a map"))
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestGet_UnknownDevice(t *testing.T) {
	inv, _ := Load(writeInventory(t, sampleInventory))
	if _, err := inv.Get("nope"); err == nil {
		t.Error("expected error for unknown device")
	}
}

func TestNames_Sorted(t *testing.T) {
	inv, _ := Load(writeInventory(t, sampleInventory))
	want := []string{"branch-fw", "demo", "lab-srx"}
	if got := inv.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
