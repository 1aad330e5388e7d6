package transport

import "testing"

func TestDevicePatternsMatchKnownNames(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ttyUSB0", true},
		{"ttyACM3", true},
		{"ttyS0", true},
		{"ttyAMA1", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"random", false},
	}

	for _, tt := range tests {
		matched := false
		for _, p := range devicePatterns {
			if p.MatchString(tt.name) {
				matched = true
				break
			}
		}
		excluded := false
		for _, p := range excludePatterns {
			if p.MatchString(tt.name) {
				excluded = true
				break
			}
		}
		got := matched && !excluded
		if got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGetPortInfoMissingDevice(t *testing.T) {
	if _, err := GetPortInfo("/dev/does-not-exist-ciscoreset"); err != ErrDeviceNotFound {
		t.Errorf("GetPortInfo error = %v, want ErrDeviceNotFound", err)
	}
}

func TestDescribePort(t *testing.T) {
	tests := map[string]string{
		"ttyUSB0": "USB Serial Port",
		"ttyACM0": "USB CDC/ACM Device",
		"ttyS0":   "Standard Serial Port",
		"weird0":  "Serial Port",
	}
	for name, want := range tests {
		if got := describePort(name); got != want {
			t.Errorf("describePort(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAutoDetectNoPortsInChroot(t *testing.T) {
	// ListPorts walks the real /dev of the test host, so the number of
	// candidates is unknown; this only asserts that a nil error never
	// comes with an empty port path.
	port, err := AutoDetect()
	if err == nil && port == "" {
		t.Error("AutoDetect returned nil error with an empty port")
	}
}
