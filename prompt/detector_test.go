package prompt

import (
	"testing"
	"time"
)

func TestDetectPromptPriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantKind Kind
		wantHost string
	}{
		{"rommon numbered", "rommon 1 > ", RomMonitor, ""},
		{"rommon bare", "rommon>", RomMonitor, ""},
		{"password", "Password: ", PasswordPrompt, ""},
		{"enter password", "Enter Password: ", PasswordPrompt, ""},
		{"config submode", "router1(config-if)#", ConfigMode, "router1"},
		{"config mode", "router1(config)#", ConfigMode, "router1"},
		{"privileged", "router1#", PrivilegedMode, "router1"},
		{"user mode", "router1>", UserMode, "router1"},
		{"boot banner", "System Bootstrap, Version 15.1", Booting, ""},
		{"cisco ios banner", "Cisco IOS Software, C4321 Software", Booting, ""},
		{"error invalid", "% Invalid input detected", Error, ""},
		{"no match", "just some noise", Unknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			mode := d.DetectPrompt(tt.output)
			if tt.wantKind == Unknown {
				if mode != nil {
					t.Fatalf("DetectPrompt(%q) = %+v, want nil", tt.output, mode)
				}
				return
			}
			if mode == nil {
				t.Fatalf("DetectPrompt(%q) = nil, want Kind %v", tt.output, tt.wantKind)
			}
			if mode.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", mode.Kind, tt.wantKind)
			}
			if mode.Hostname != tt.wantHost {
				t.Errorf("Hostname = %q, want %q", mode.Hostname, tt.wantHost)
			}
		})
	}
}

func TestDetectPromptIsPure(t *testing.T) {
	d := NewDetector()
	const out = "router1#"
	first := d.DetectPrompt(out)
	second := d.DetectPrompt(out)
	if first.Kind != second.Kind || first.Hostname != second.Hostname {
		t.Errorf("repeated DetectPrompt calls on identical input diverged: %+v vs %+v", first, second)
	}
}

func TestDetectorRemembersLastState(t *testing.T) {
	d := NewDetector()
	d.DetectPrompt("router1#")
	if d.CurrentState() != PrivilegedMode {
		t.Errorf("CurrentState() = %v, want PrivilegedMode", d.CurrentState())
	}
	if d.Hostname() != "router1" {
		t.Errorf("Hostname() = %q, want router1", d.Hostname())
	}

	// A call that matches nothing must not clobber the remembered state.
	d.DetectPrompt("noise")
	if d.CurrentState() != PrivilegedMode {
		t.Errorf("CurrentState() after a non-match = %v, want PrivilegedMode unchanged", d.CurrentState())
	}
}

func TestIsBootingAndHasError(t *testing.T) {
	d := NewDetector()
	if !d.IsBooting("Loading \"flash:c4321.bin\"") {
		t.Error("IsBooting() = false for a boot banner")
	}
	if d.IsBooting("router1#") {
		t.Error("IsBooting() = true for a privileged prompt")
	}
	if !d.HasError("% Ambiguous command") {
		t.Error("HasError() = false for a known error family")
	}
}

func TestRequiresPassword(t *testing.T) {
	d := NewDetector()
	if !d.RequiresPassword("Password: ") {
		t.Error("RequiresPassword() = false for a password prompt")
	}
	if d.RequiresPassword("router1>") {
		t.Error("RequiresPassword() = true for a user prompt")
	}
}

func TestWaitForPromptTimesOut(t *testing.T) {
	d := NewDetector()
	start := time.Now()
	mode := d.WaitForPrompt(func() string { return "no prompt here" }, nil, 150*time.Millisecond)
	if mode != nil {
		t.Errorf("WaitForPrompt() = %+v, want nil on timeout", mode)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("WaitForPrompt() returned after %v, want at least the timeout", elapsed)
	}
}

func TestWaitForPromptSucceedsOnTarget(t *testing.T) {
	d := NewDetector()
	target := PrivilegedMode
	mode := d.WaitForPrompt(func() string { return "router1#" }, &target, time.Second)
	if mode == nil || mode.Kind != PrivilegedMode {
		t.Fatalf("WaitForPrompt() = %+v, want PrivilegedMode", mode)
	}
}

func TestWaitForPromptIgnoresWrongTarget(t *testing.T) {
	d := NewDetector()
	target := ConfigMode
	start := time.Now()
	mode := d.WaitForPrompt(func() string { return "router1#" }, &target, 150*time.Millisecond)
	if mode != nil {
		t.Errorf("WaitForPrompt() = %+v, want nil (privileged prompt seen, config mode wanted)", mode)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("WaitForPrompt() returned after %v, want at least the timeout", elapsed)
	}
}
