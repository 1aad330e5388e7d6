// Package inventory issues show commands and parses their output into
// a typed system inventory record: licenses, hardware, software,
// features, interfaces, configuration, and system info (spec §4.8).
package inventory

// UDI is a Unique Device Identifier.
type UDI struct {
	PID string
	SN  string
}

// Licenses is the license topic's parsed fields plus raw captures.
type Licenses struct {
	Active   []string
	Inactive []string
	Eval     []string
	UDI      UDI
	Raw      map[string]string
}

// Module is one chassis or module entry from "show inventory".
type Module struct {
	Name        string
	Description string
	PID         string
	SN          string
}

// Hardware is the hardware topic's parsed fields plus raw captures.
type Hardware struct {
	Chassis  Module
	Modules  []Module
	Uptime   string
	MemoryKB string
	CPUMHz   string
	Raw      map[string]string
}

// Package is one software package entry, IOS XE only.
type Package struct {
	Name    string
	Version string
}

// Software is the software topic's parsed fields plus raw captures.
type Software struct {
	IOSVersion string
	ImageFile  string
	Packages   []Package
	Raw        map[string]string
}

// Features is the features topic's parsed fields plus raw captures.
type Features struct {
	RoutingProtocols []string
	Security         []string
	Raw              map[string]string
}

// Interface is one entry from "show ip interface brief".
type Interface struct {
	Name     string
	IP       string
	Status   string
	Protocol string
}

// Interfaces is the interfaces topic's parsed fields plus raw captures.
type Interfaces struct {
	Physical []Interface
	Logical  []Interface
	Raw      map[string]string
}

// Configuration is the configuration topic's parsed fields.
type Configuration struct {
	Hostname string
	Raw      map[string]string
}

// SystemInfo is the system_info topic's raw captures (spec §4.8 lists
// no parsed fields for this topic beyond the raw clock/users text).
type SystemInfo struct {
	Clock string
	Users string
	Raw   map[string]string
}

// Record is the composite inventory produced by one Detector.DetectAll
// run (spec §3 Inventory record).
type Record struct {
	Licenses      Licenses
	Hardware      Hardware
	Software      Software
	Features      Features
	Interfaces    Interfaces
	Configuration Configuration
	SystemInfo    SystemInfo
}
