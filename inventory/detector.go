package inventory

import (
	"regexp"
	"strings"
	"time"

	"github.com/allbin/ciscoreset/logging"
	"github.com/allbin/ciscoreset/prompt"
)

// Executor is the narrow slice of executor.Executor a Detector needs.
type Executor interface {
	Execute(command string, expectedMode *prompt.Kind, timeout time.Duration, retryOnFailure, waitForEcho bool) (bool, string)
}

// Detector issues the §4.8 show commands and folds their output into
// a Record. A command's absence (IOS vs IOS XE) or outright failure is
// tolerated per-command and never aborts the run.
type Detector struct {
	exec Executor
	log  logging.Logger
}

// New builds a Detector. log defaults to a no-op logger when nil.
func New(exec Executor, log logging.Logger) *Detector {
	if log == nil {
		log = logging.Noop()
	}
	return &Detector{exec: exec, log: log}
}

func (d *Detector) run(command string, timeout time.Duration) (bool, string) {
	ok, output := d.exec.Execute(command, nil, timeout, false, true)
	if !ok {
		d.log.Debug("inventory command did not complete", logging.F("command", command))
	}
	return ok, output
}

// DetectAll runs every topic in the order spec §4.8 lists them.
func (d *Detector) DetectAll() Record {
	d.log.Info("starting comprehensive system detection")

	rec := Record{
		Licenses:      d.DetectLicenses(),
		Hardware:      d.DetectHardware(),
		Software:      d.DetectSoftware(),
		Features:      d.DetectFeatures(),
		Interfaces:    d.DetectInterfaces(),
		Configuration: d.DetectConfiguration(),
		SystemInfo:    d.DetectSystemInfo(),
	}

	d.log.Info("system detection complete")
	return rec
}

var (
	licenseActivePattern   = regexp.MustCompile(`(?i)Status:\s*ACTIVE`)
	licenseInactivePattern = regexp.MustCompile(`(?i)Status:\s*INACTIVE`)
	licenseEvalPattern     = regexp.MustCompile(`(?i)Status:\s*EVALUATION`)
	licensePIDPattern      = regexp.MustCompile(`(?i)PID:\s*([A-Z0-9/-]+)`)
	licenseSNPattern       = regexp.MustCompile(`(?i)SN:\s*([A-Z0-9]+)`)
)

// DetectLicenses issues show license summary/feature/udi and parses
// active/inactive/eval license lines plus the UDI.
func (d *Detector) DetectLicenses() Licenses {
	d.log.Info("detecting licenses")
	lic := Licenses{Raw: map[string]string{}}

	if ok, output := d.run("show license summary", 10*time.Second); ok {
		lic.Raw["show license summary"] = output
		for _, line := range strings.Split(output, "\n") {
			switch {
			case licenseActivePattern.MatchString(line):
				lic.Active = append(lic.Active, strings.TrimSpace(line))
			case licenseInactivePattern.MatchString(line):
				lic.Inactive = append(lic.Inactive, strings.TrimSpace(line))
			case licenseEvalPattern.MatchString(line):
				lic.Eval = append(lic.Eval, strings.TrimSpace(line))
			}
		}
	}

	if ok, output := d.run("show license feature", 10*time.Second); ok {
		lic.Raw["show license feature"] = output
	}

	if ok, output := d.run("show license udi", 10*time.Second); ok {
		lic.Raw["show license udi"] = output
		if m := licensePIDPattern.FindStringSubmatch(output); m != nil {
			lic.UDI.PID = m[1]
		}
		if m := licenseSNPattern.FindStringSubmatch(output); m != nil {
			lic.UDI.SN = m[1]
		}
	}

	return lic
}

var (
	inventoryNamePattern = regexp.MustCompile(`(?i)NAME:\s*"([^"]+)"`)
	inventoryDescPattern = regexp.MustCompile(`(?i)DESCR:\s*"([^"]+)"`)
	inventoryPIDPattern  = regexp.MustCompile(`(?i)PID:\s*([A-Z0-9-]+)`)
	inventorySNPattern   = regexp.MustCompile(`(?i)SN:\s*([A-Z0-9]+)`)
	uptimePattern        = regexp.MustCompile(`(?i)uptime is\s+(.+)`)
	memoryPattern        = regexp.MustCompile(`(?i)(\d+[KMGT]?) bytes of (?:.*?memory|RAM)`)
	processorPattern     = regexp.MustCompile(`(?i)processor.*?(\d+)\s*MHz`)
)

// DetectHardware issues show inventory/version and parses chassis,
// modules, uptime, memory, and CPU speed.
func (d *Detector) DetectHardware() Hardware {
	d.log.Info("detecting hardware inventory")
	hw := Hardware{Raw: map[string]string{}}

	if ok, output := d.run("show inventory", 15*time.Second); ok {
		hw.Raw["show inventory"] = output
		parseInventoryModules(output, &hw)
	}

	if ok, output := d.run("show version", 10*time.Second); ok {
		hw.Raw["show version"] = output
		if m := uptimePattern.FindStringSubmatch(output); m != nil {
			hw.Uptime = strings.TrimSpace(m[1])
		}
		if m := memoryPattern.FindStringSubmatch(output); m != nil {
			hw.MemoryKB = m[1]
		}
		if m := processorPattern.FindStringSubmatch(output); m != nil {
			hw.CPUMHz = m[1]
		}
	}

	return hw
}

func parseInventoryModules(output string, hw *Hardware) {
	var current Module
	var have bool

	flush := func() {
		if !have {
			return
		}
		if strings.Contains(current.Name, "Chassis") {
			hw.Chassis = current
		} else {
			hw.Modules = append(hw.Modules, current)
		}
	}

	for _, line := range strings.Split(output, "\n") {
		if m := inventoryNamePattern.FindStringSubmatch(line); m != nil {
			flush()
			current = Module{Name: m[1]}
			have = true
		}
		if !have {
			continue
		}
		if m := inventoryDescPattern.FindStringSubmatch(line); m != nil {
			current.Description = m[1]
		}
		if m := inventoryPIDPattern.FindStringSubmatch(line); m != nil {
			current.PID = m[1]
		}
		if m := inventorySNPattern.FindStringSubmatch(line); m != nil {
			current.SN = m[1]
		}
	}
	flush()
}

var (
	versionPattern = regexp.MustCompile(`(?i)Version\s+([0-9.()A-Za-z]+)`)
	imagePattern   = regexp.MustCompile(`(?i)System image file is\s+"([^"]+)"`)
	packagePattern = regexp.MustCompile(`(?i)([A-Za-z0-9_-]+)\s+.*?(\d+\.\d+\.\d+)`)
)

// DetectSoftware issues show version/software and parses the IOS
// version, image file, and (IOS XE only) installed packages.
func (d *Detector) DetectSoftware() Software {
	d.log.Info("detecting software version")
	sw := Software{Raw: map[string]string{}}

	if ok, output := d.run("show version", 10*time.Second); ok {
		sw.Raw["show version"] = output
		if m := versionPattern.FindStringSubmatch(output); m != nil {
			sw.IOSVersion = m[1]
		}
		if m := imagePattern.FindStringSubmatch(output); m != nil {
			sw.ImageFile = m[1]
		}
	}

	// "show software" is IOS XE-specific; a failure here is an
	// ordinary, non-fatal absence on plain IOS (spec §9 open question).
	if ok, output := d.run("show software", 15*time.Second); ok {
		sw.Raw["show software"] = output
		for _, m := range packagePattern.FindAllStringSubmatch(output, -1) {
			sw.Packages = append(sw.Packages, Package{Name: m[1], Version: m[2]})
		}
	}

	return sw
}

var routingProtocols = []string{"ospf", "eigrp", "bgp", "rip", "isis"}

var routingProtocolPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(routingProtocols))
	for _, p := range routingProtocols {
		m[p] = regexp.MustCompile(`(?i)\b` + p + `\b`)
	}
	return m
}()

var (
	ipsecPattern = regexp.MustCompile(`(?i)\bipsec\b`)
	sslPattern   = regexp.MustCompile(`(?i)\bssl\b`)
)

// DetectFeatures issues show feature (IOS XE, tolerated if absent) and
// show running-config, scanning the config for routing protocols and
// security features.
func (d *Detector) DetectFeatures() Features {
	d.log.Info("detecting features")
	feat := Features{Raw: map[string]string{}}

	if ok, output := d.run("show feature", 10*time.Second); ok {
		feat.Raw["show feature"] = output
	}

	if ok, output := d.run("show running-config", 30*time.Second); ok {
		if len(output) > 10000 {
			output = output[:10000]
		}
		feat.Raw["show running-config"] = output

		for _, protocol := range routingProtocols {
			if routingProtocolPatterns[protocol].MatchString(output) {
				feat.RoutingProtocols = append(feat.RoutingProtocols, strings.ToUpper(protocol))
			}
		}
		if ipsecPattern.MatchString(output) {
			feat.Security = append(feat.Security, "IPSEC")
		}
		if sslPattern.MatchString(output) {
			feat.Security = append(feat.Security, "SSL")
		}
	}

	return feat
}

var physicalInterfacePrefixes = []string{"GigabitEthernet", "FastEthernet", "Serial", "Ethernet"}

// DetectInterfaces issues show ip interface brief and splits the
// result into physical and logical interfaces.
func (d *Detector) DetectInterfaces() Interfaces {
	d.log.Info("detecting interfaces")
	ifaces := Interfaces{Raw: map[string]string{}}

	ok, output := d.run("show ip interface brief", 15*time.Second)
	if !ok {
		return ifaces
	}
	ifaces.Raw["show ip interface brief"] = output

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "Interface") && strings.Contains(line, "IP-Address") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		iface := Interface{Name: fields[0], IP: fields[1], Status: fields[2], Protocol: fields[3]}
		if iface.IP == "unassigned" {
			iface.IP = ""
		}

		if hasPhysicalPrefix(iface.Name) {
			ifaces.Physical = append(ifaces.Physical, iface)
		} else {
			ifaces.Logical = append(ifaces.Logical, iface)
		}
	}

	return ifaces
}

func hasPhysicalPrefix(name string) bool {
	for _, prefix := range physicalInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

var hostnamePattern = regexp.MustCompile(`(?i)hostname\s+(\S+)`)

// DetectConfiguration issues show running-config | include hostname.
func (d *Detector) DetectConfiguration() Configuration {
	d.log.Info("detecting configuration summary")
	cfg := Configuration{Raw: map[string]string{}}

	if ok, output := d.run("show running-config | include hostname", 10*time.Second); ok {
		cfg.Raw["show running-config | include hostname"] = output
		if m := hostnamePattern.FindStringSubmatch(output); m != nil {
			cfg.Hostname = m[1]
		}
	}

	return cfg
}

// DetectSystemInfo issues show clock and show users, kept raw per
// spec §4.8 (no parsed fields named for this topic).
func (d *Detector) DetectSystemInfo() SystemInfo {
	d.log.Info("detecting system information")
	info := SystemInfo{Raw: map[string]string{}}

	if ok, output := d.run("show clock", 5*time.Second); ok {
		info.Clock = strings.TrimSpace(output)
		info.Raw["show clock"] = output
	}
	if ok, output := d.run("show users", 5*time.Second); ok {
		info.Users = output
		info.Raw["show users"] = output
	}

	return info
}
