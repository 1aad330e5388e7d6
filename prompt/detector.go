package prompt

import (
	"regexp"
	"time"
)

// Pattern families, checked in priority order: ROM monitor → password
// prompt → config submode → config → privileged → user → boot banner
// → error. Ported from the reference implementation's PromptDetector.

var romMonitorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rommon\s*\d+\s*>\s*`),
	regexp.MustCompile(`(?i)rommon>\s*`),
	regexp.MustCompile(`(?i)\(rommon\)>\s*`),
}

var passwordPromptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)[Pp]assword:\s*$`),
	regexp.MustCompile(`(?m)[Ee]nter\s+[Pp]assword:\s*$`),
	regexp.MustCompile(`(?m)[Pp]assword\s+for\s+[^:]+:\s*$`),
}

// configSubmodePattern is checked ahead of the bare config pattern so
// "(config-if)#" etc. classify with their submode name populated.
var configSubmodePattern = regexp.MustCompile(`(?m)([A-Za-z0-9_-]+)\s*\(config-([^)]+)\)#\s*$`)
var configModePattern = regexp.MustCompile(`(?m)([A-Za-z0-9_-]+)\s*\(config\)#\s*$`)

var privilegedModePattern = regexp.MustCompile(`(?m)([A-Za-z0-9_-]+)\s*#\s*$`)
var userModePattern = regexp.MustCompile(`(?m)([A-Za-z0-9_-]+)\s*>\s*$`)

var bootPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)System Bootstrap`),
	regexp.MustCompile(`(?i)Initializing`),
	regexp.MustCompile(`(?i)Loading`),
	regexp.MustCompile(`(?i)Starting`),
	regexp.MustCompile(`(?i)Cisco IOS XE`),
	regexp.MustCompile(`(?i)Cisco IOS`),
}

var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)% Invalid input`),
	regexp.MustCompile(`(?i)% Invalid command`),
	regexp.MustCompile(`(?i)% Incomplete command`),
	regexp.MustCompile(`(?i)% Ambiguous command`),
	regexp.MustCompile(`(?i)% Unknown command`),
	regexp.MustCompile(`(?i)% Error`),
}

// Detector classifies console output and remembers the last result,
// mirroring the reference PromptDetector's get_current_state/
// get_hostname accessors.
type Detector struct {
	lastMode     Kind
	lastHostname string
}

// NewDetector returns a Detector with no prior state.
func NewDetector() *Detector {
	return &Detector{lastMode: Unknown}
}

// DetectPrompt classifies output per the priority order in spec §4.2.
// Classification never fails: the absence of a match is a normal,
// nil-Mode outcome, not an error.
func (d *Detector) DetectPrompt(output string) *Mode {
	for _, p := range romMonitorPatterns {
		if m := p.FindString(output); m != "" {
			d.remember(RomMonitor, "")
			return &Mode{Kind: RomMonitor, Match: m}
		}
	}

	for _, p := range passwordPromptPatterns {
		if m := p.FindString(output); m != "" {
			d.remember(PasswordPrompt, "")
			return &Mode{Kind: PasswordPrompt, Match: m}
		}
	}

	if m := configSubmodePattern.FindStringSubmatch(output); m != nil {
		d.remember(ConfigMode, m[1])
		return &Mode{Kind: ConfigMode, Hostname: m[1], Submode: m[2], Match: m[0]}
	}
	if m := configModePattern.FindStringSubmatch(output); m != nil {
		d.remember(ConfigMode, m[1])
		return &Mode{Kind: ConfigMode, Hostname: m[1], Match: m[0]}
	}

	if m := privilegedModePattern.FindStringSubmatch(output); m != nil {
		d.remember(PrivilegedMode, m[1])
		return &Mode{Kind: PrivilegedMode, Hostname: m[1], Match: m[0]}
	}

	if m := userModePattern.FindStringSubmatch(output); m != nil {
		d.remember(UserMode, m[1])
		return &Mode{Kind: UserMode, Hostname: m[1], Match: m[0]}
	}

	for _, p := range bootPatterns {
		if p.MatchString(output) {
			d.remember(Booting, "")
			return &Mode{Kind: Booting}
		}
	}

	for _, p := range errorPatterns {
		if m := p.FindString(output); m != "" {
			return &Mode{Kind: Error, ErrText: m}
		}
	}

	return nil
}

func (d *Detector) remember(k Kind, hostname string) {
	d.lastMode = k
	if hostname != "" {
		d.lastHostname = hostname
	}
}

// CurrentState returns the last successfully detected Kind.
func (d *Detector) CurrentState() Kind { return d.lastMode }

// Hostname returns the last detected hostname, or "" if none seen yet.
func (d *Detector) Hostname() string { return d.lastHostname }

// IsBooting reports whether output contains a boot banner.
func (d *Detector) IsBooting(output string) bool {
	for _, p := range bootPatterns {
		if p.MatchString(output) {
			return true
		}
	}
	return false
}

// HasError reports whether output contains an IOS error message.
func (d *Detector) HasError(output string) bool {
	for _, p := range errorPatterns {
		if p.MatchString(output) {
			return true
		}
	}
	return false
}

// RequiresPassword reports whether output currently shows a password
// prompt. Supplemented from the reference implementation's
// requires_password convenience method.
func (d *Detector) RequiresPassword(output string) bool {
	for _, p := range passwordPromptPatterns {
		if p.MatchString(output) {
			return true
		}
	}
	return false
}

// WaitForPrompt polls fetch (normally Port.GetOutputBuffer) every 100ms
// until DetectPrompt matches target (or any non-nil Mode, when target
// is nil) or timeout elapses.
func (d *Detector) WaitForPrompt(fetch func() string, target *Kind, timeout time.Duration) *Mode {
	deadline := time.Now().Add(timeout)
	for {
		mode := d.DetectPrompt(fetch())
		if mode != nil && (target == nil || mode.Kind == *target) {
			return mode
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}
