package inventory

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// JSON renders the record as indented JSON.
func (r Record) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML renders the record as YAML.
func (r Record) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Text renders the record as the fixed-banner plain-text report the
// reference implementation produces (spec §4.8), in topic order.
func (r Record) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)

	b.WriteString(rule + "\n")
	b.WriteString("Cisco Router System Detection Report\n")
	b.WriteString(rule + "\n\n")

	b.WriteString("LICENSES\n" + dash + "\n")
	if r.Licenses.UDI.PID != "" || r.Licenses.UDI.SN != "" {
		fmt.Fprintf(&b, "UDI: PID=%s, SN=%s\n", orNA(r.Licenses.UDI.PID), orNA(r.Licenses.UDI.SN))
	}
	b.WriteString("\n")

	b.WriteString("HARDWARE\n" + dash + "\n")
	if r.Hardware.Chassis.Name != "" {
		fmt.Fprintf(&b, "Chassis: %s\n", r.Hardware.Chassis.Name)
		fmt.Fprintf(&b, "  Description: %s\n", orNA(r.Hardware.Chassis.Description))
		fmt.Fprintf(&b, "  PID: %s\n", orNA(r.Hardware.Chassis.PID))
		fmt.Fprintf(&b, "  SN: %s\n", orNA(r.Hardware.Chassis.SN))
	}
	b.WriteString("\n")

	b.WriteString("SOFTWARE\n" + dash + "\n")
	if r.Software.IOSVersion != "" {
		fmt.Fprintf(&b, "IOS Version: %s\n", r.Software.IOSVersion)
	}
	if r.Software.ImageFile != "" {
		fmt.Fprintf(&b, "Image File: %s\n", r.Software.ImageFile)
	}
	b.WriteString("\n")

	b.WriteString("INTERFACES\n" + dash + "\n")
	fmt.Fprintf(&b, "Physical Interfaces: %d\n", len(r.Interfaces.Physical))
	fmt.Fprintf(&b, "Logical Interfaces: %d\n", len(r.Interfaces.Logical))
	b.WriteString("\n")

	b.WriteString(rule + "\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
