package reset

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allbin/ciscoreset/prompt"
	"github.com/allbin/ciscoreset/recovery"
)

// fakeExecutor is a scripted Executor: each call consumes the next
// scripted response, falling back to (true, "") once exhausted.
type fakeExecutor struct {
	mu        sync.Mutex
	responses []execResponse
	commands  []string
}

type execResponse struct {
	ok     bool
	output string
}

func (f *fakeExecutor) Execute(command string, expectedMode *prompt.Kind, timeout time.Duration, retryOnFailure, waitForEcho bool) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	if len(f.responses) == 0 {
		return true, ""
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.ok, r.output
}

func (f *fakeExecutor) EnterConfigMode() bool { return true }
func (f *fakeExecutor) ExitConfigMode() bool  { return true }
func (f *fakeExecutor) SaveConfig(string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return true
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.ok
}

func newMachineAt(states ...recovery.State) *recovery.Machine {
	m := recovery.NewMachine(nil, nil)
	for _, s := range states {
		m.Transition(s, "setup", nil)
	}
	return m
}

func TestVerifyPrivilegedAccessRecognizesPrompt(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "Cisco IOS Software\nRouter#"}}}
	w := New(exec, newMachineAt(), nil, nil)

	if !w.VerifyPrivilegedAccess() {
		t.Error("VerifyPrivilegedAccess() = false, want true on a privileged prompt")
	}
}

func TestVerifyPrivilegedAccessRejectsUserMode(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "Router>"}}}
	w := New(exec, newMachineAt(), nil, nil)

	if w.VerifyPrivilegedAccess() {
		t.Error("VerifyPrivilegedAccess() = true, want false on a user-mode prompt")
	}
}

func TestResetEnableSecretUsesProvidedPassword(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "router(config)#"}}}
	m := newMachineAt(recovery.Connected, recovery.WaitingBoot, recovery.SendingBreak, recovery.RomMonitor, recovery.ConfigRegSet, recovery.Rebooting, recovery.IosNoConfig)
	w := New(exec, m, nil, nil)

	if !w.ResetEnableSecret("NewPw1!") {
		t.Error("ResetEnableSecret() = false")
	}
	found := false
	for _, c := range exec.commands {
		if c == "enable secret NewPw1!" {
			found = true
		}
	}
	if !found {
		t.Errorf("commands = %v, want enable secret command", exec.commands)
	}
	if m.CurrentState() != recovery.PasswordReset {
		t.Errorf("state = %v, want PasswordReset", m.CurrentState())
	}
}

func TestResetEnableSecretPromptsWhenPasswordEmpty(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "router(config)#"}}}
	input := &CannedInput{Values: []string{"FromPrompt1!"}}
	w := New(exec, newMachineAt(), input, nil)

	if !w.ResetEnableSecret("") {
		t.Error("ResetEnableSecret() = false")
	}
	found := false
	for _, c := range exec.commands {
		if c == "enable secret FromPrompt1!" {
			found = true
		}
	}
	if !found {
		t.Errorf("commands = %v, want prompted password used", exec.commands)
	}
}

func TestResetEnableSecretFailsWithoutPasswordSource(t *testing.T) {
	exec := &fakeExecutor{}
	w := New(exec, newMachineAt(), nil, nil)

	if w.ResetEnableSecret("") {
		t.Error("ResetEnableSecret() = true, want false with no password available")
	}
}

func TestResetConsolePasswordSkippedWhenEmpty(t *testing.T) {
	exec := &fakeExecutor{}
	w := New(exec, newMachineAt(), nil, nil)

	if !w.ResetConsolePassword("") {
		t.Error("ResetConsolePassword(\"\") = false, want true (skip)")
	}
	if len(exec.commands) != 0 {
		t.Errorf("commands = %v, want none sent when password is empty", exec.commands)
	}
}

func TestResetConsolePasswordAppliesLines(t *testing.T) {
	exec := &fakeExecutor{}
	w := New(exec, newMachineAt(), nil, nil)

	if !w.ResetConsolePassword("linepw") {
		t.Error("ResetConsolePassword() = false")
	}
	want := []string{"line console 0", "password linepw", "login"}
	if len(exec.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", exec.commands, want)
	}
	for i, c := range want {
		if exec.commands[i] != c {
			t.Errorf("commands[%d] = %q, want %q", i, exec.commands[i], c)
		}
	}
}

func TestRestoreConfigRegister(t *testing.T) {
	exec := &fakeExecutor{}
	w := New(exec, newMachineAt(), nil, nil)

	if !w.RestoreConfigRegister() {
		t.Error("RestoreConfigRegister() = false")
	}
	if len(exec.commands) != 1 || exec.commands[0] != "config-register 0x2102" {
		t.Errorf("commands = %v, want config-register 0x2102", exec.commands)
	}
}

func TestSaveConfigurationTransitionsState(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, ""}}}
	m := newMachineAt(recovery.Connected, recovery.WaitingBoot, recovery.SendingBreak, recovery.RomMonitor, recovery.ConfigRegSet, recovery.Rebooting, recovery.IosNoConfig, recovery.PasswordReset)
	w := New(exec, m, nil, nil)

	if !w.SaveConfiguration() {
		t.Error("SaveConfiguration() = false")
	}
	if m.CurrentState() != recovery.ConfigSaved {
		t.Errorf("state = %v, want ConfigSaved", m.CurrentState())
	}
}

func TestVerifyPasswordResetDetectsSecretLine(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "enable secret 9 $9$abcxyz"}}}
	w := New(exec, newMachineAt(), nil, nil)

	if !w.VerifyPasswordReset() {
		t.Error("VerifyPasswordReset() = false, want true")
	}
}

func TestVerifyPasswordResetNonFatalWhenMissing(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, ""}}}
	w := New(exec, newMachineAt(), nil, nil)

	if w.VerifyPasswordReset() {
		t.Error("VerifyPasswordReset() = true, want false when absent")
	}
}

func TestCompletePasswordResetHappyPath(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{
		{true, "Cisco IOS Software\nRouter#"},       // verify access
		{true, "router(config)#"},                   // enable secret
		{true, "router(config)#"},                   // console: line console 0
		{true, "router(config)#"},                   // console: password
		{true, "router(config)#"},                   // console: login
		{true, "router(config)#"},                   // vty: line vty 0 4
		{true, "router(config)#"},                   // vty: password
		{true, "router(config)#"},                   // vty: login
		{true, "router(config)#"},                   // config-register
		{true, "1441 bytes copied"},                 // save config
		{true, "enable secret 9 $9$xyz"},            // verify
	}}
	m := newMachineAt(recovery.Connected, recovery.WaitingBoot, recovery.SendingBreak, recovery.RomMonitor, recovery.ConfigRegSet, recovery.Rebooting, recovery.IosNoConfig)
	w := New(exec, m, nil, nil)

	ok := w.CompletePasswordReset(Options{
		EnablePassword:  "NewPw1!",
		ConsolePassword: "consolepw",
		VTYPassword:     "vtypw",
	})
	if !ok {
		t.Fatalf("CompletePasswordReset() = false, commands so far: %v", exec.commands)
	}
	if m.CurrentState() != recovery.Complete {
		t.Errorf("state = %v, want Complete", m.CurrentState())
	}
	if !strings.Contains(strings.Join(exec.commands, "|"), "enable secret NewPw1!") {
		t.Errorf("commands = %v, missing enable secret", exec.commands)
	}
}

func TestCompletePasswordResetFailsWithoutPrivilegedAccess(t *testing.T) {
	exec := &fakeExecutor{responses: []execResponse{{true, "Router>"}}}
	w := New(exec, newMachineAt(), nil, nil)

	if w.CompletePasswordReset(Options{EnablePassword: "x"}) {
		t.Error("CompletePasswordReset() = true, want false without privileged access")
	}
}
