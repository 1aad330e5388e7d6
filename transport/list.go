package transport

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var devicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // virtual terminals
	regexp.MustCompile(`^console$`),
	regexp.MustCompile(`^ptmx$`),
	regexp.MustCompile(`^pty.*$`),
	regexp.MustCompile(`^pts/.*$`),
}

// ListPorts returns every character device under /dev that looks like
// a serial line, sorted for stable ordering (spec §4.2).
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()

		excluded := false
		for _, p := range excludePatterns {
			if p.MatchString(name) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		matched := false
		for _, p := range devicePatterns {
			if p.MatchString(name) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		full := filepath.Join("/dev", name)
		if isCharacterDevice(full) {
			ports = append(ports, full)
		}
	}

	sort.Strings(ports)
	return ports, nil
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes one discovered serial device.
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// GetPortInfo returns descriptive metadata for a single port path.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}
	name := filepath.Base(portPath)
	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: describePort(name),
	}, nil
}

func describePort(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// AutoDetect returns the sole discovered port, or an error if zero or
// more than one candidate is present — auto-detection only applies
// when the choice is unambiguous (spec §4.2).
func AutoDetect() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	switch len(ports) {
	case 0:
		return "", ErrDeviceNotFound
	case 1:
		return ports[0], nil
	default:
		return "", ErrAmbiguousPort
	}
}
