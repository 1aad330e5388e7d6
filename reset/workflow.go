// Package reset composes the command executor and the recovery state
// machine into the password-reset procedure: verify privileged access,
// reset the enable secret plus optional console/VTY passwords, restore
// the configuration register, save, and verify (spec §4.7).
package reset

import (
	"errors"
	"strings"
	"time"

	"github.com/allbin/ciscoreset/logging"
	"github.com/allbin/ciscoreset/prompt"
	"github.com/allbin/ciscoreset/recovery"
)

var (
	errNotPrivileged = errors.New("reset: router did not present a privileged prompt")
	errResetFailed   = errors.New("reset: step failed, see log for detail")
)

// Executor is the narrow slice of executor.Executor a Workflow needs.
type Executor interface {
	Execute(command string, expectedMode *prompt.Kind, timeout time.Duration, retryOnFailure, waitForEcho bool) (bool, string)
	EnterConfigMode() bool
	ExitConfigMode() bool
	SaveConfig(target string) bool
}

// PasswordSource supplies a password for a given prompt, optionally
// asking for confirmation. It parameterizes the interactive-input
// boundary effect (spec §9 "Interactive input" design note) so tests
// can inject canned values and production can wire an echoless reader.
// The bool return is false when the caller declined or cancelled input.
type PasswordSource interface {
	Get(prompt string, confirm bool) (string, bool)
}

// NoInput is a PasswordSource that never supplies a password, for
// non-interactive callers that always pass an explicit password.
type NoInput struct{}

func (NoInput) Get(string, bool) (string, bool) { return "", false }

// Workflow runs the password-reset procedure against an Executor,
// gating and announcing progress through a recovery.Machine.
type Workflow struct {
	exec    Executor
	machine *recovery.Machine
	input   PasswordSource
	log     logging.Logger
}

// New builds a Workflow. input defaults to NoInput{} and log to a
// no-op logger when nil.
func New(exec Executor, machine *recovery.Machine, input PasswordSource, log logging.Logger) *Workflow {
	if input == nil {
		input = NoInput{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Workflow{exec: exec, machine: machine, input: input, log: log}
}

// VerifyPrivilegedAccess executes "show version" and accepts the
// router as unauthenticated-privileged iff the resulting mode is
// PrivilegedMode.
func (w *Workflow) VerifyPrivilegedAccess() bool {
	w.log.Info("verifying privileged access")

	_, output := w.exec.Execute("show version", nil, 10*time.Second, false, true)

	detector := prompt.NewDetector()
	mode := detector.DetectPrompt(output)
	if mode != nil && mode.Kind == prompt.PrivilegedMode {
		w.log.Info("privileged access verified (no password required)")
		return true
	}

	w.log.Warn("privileged access not available")
	return false
}

// ResetEnableSecret sets the enable secret to password, entering and
// exiting config mode around it. It always attempts to exit config
// mode even when the set itself failed.
func (w *Workflow) ResetEnableSecret(password string) bool {
	w.log.Info("resetting enable secret password")
	w.machine.Transition(recovery.PasswordReset, "resetting enable secret", nil)

	if password == "" {
		pw, ok := w.input.Get("Enter new enable secret password: ", true)
		if !ok || pw == "" {
			w.log.Error("no enable secret password supplied")
			return false
		}
		password = pw
	}

	if !w.exec.EnterConfigMode() {
		w.log.Error("failed to enter configuration mode")
		return false
	}

	cfg := prompt.ConfigMode
	ok, _ := w.exec.Execute("enable secret "+password, &cfg, 10*time.Second, false, true)
	if !ok {
		w.log.Error("failed to set enable secret")
		w.exec.ExitConfigMode()
		return false
	}

	if !w.exec.ExitConfigMode() {
		w.log.Warn("failed to exit configuration mode")
	}

	w.log.Info("enable secret password reset successfully")
	return true
}

// ResetConsolePassword configures "line console 0" with password and
// "login", or does nothing (returning true) when password is "".
func (w *Workflow) ResetConsolePassword(password string) bool {
	if password == "" {
		return true
	}
	w.log.Info("resetting console password")
	return w.applyLineConfig("line console 0", password)
}

// ResetVTYPassword configures "line vty 0 4" with password and
// "login", or does nothing (returning true) when password is "".
func (w *Workflow) ResetVTYPassword(password string) bool {
	if password == "" {
		return true
	}
	w.log.Info("resetting VTY password")
	return w.applyLineConfig("line vty 0 4", password)
}

func (w *Workflow) applyLineConfig(lineCommand, password string) bool {
	if !w.exec.EnterConfigMode() {
		return false
	}

	cfg := prompt.ConfigMode
	for _, cmd := range []string{lineCommand, "password " + password, "login"} {
		if ok, _ := w.exec.Execute(cmd, &cfg, 5*time.Second, false, true); !ok {
			w.exec.ExitConfigMode()
			return false
		}
	}

	w.exec.ExitConfigMode()
	return true
}

// RestoreConfigRegister sets "config-register 0x2102" from config
// mode, returning the line back to normal boot behavior.
func (w *Workflow) RestoreConfigRegister() bool {
	w.log.Info("restoring configuration register to 0x2102")

	if !w.exec.EnterConfigMode() {
		return false
	}

	cfg := prompt.ConfigMode
	ok, _ := w.exec.Execute("config-register 0x2102", &cfg, 10*time.Second, false, true)
	if !ok {
		w.exec.ExitConfigMode()
		return false
	}

	w.exec.ExitConfigMode()
	w.log.Info("configuration register restored to 0x2102")
	return true
}

// SaveConfiguration saves running-config to startup-config.
func (w *Workflow) SaveConfiguration() bool {
	w.log.Info("saving configuration")
	w.machine.Transition(recovery.ConfigSaved, "saving configuration", nil)

	ok := w.exec.SaveConfig("startup-config")
	if ok {
		w.log.Info("configuration saved successfully")
	} else {
		w.log.Error("failed to save configuration")
	}
	return ok
}

// VerifyPasswordReset checks running-config for an "enable secret"
// line. Failure to confirm is logged but non-fatal — the caller
// completes the workflow regardless (spec §4.7).
func (w *Workflow) VerifyPasswordReset() bool {
	w.log.Info("verifying password reset")

	ok, output := w.exec.Execute("show running-config | include enable secret", nil, 10*time.Second, false, true)
	if ok && strings.Contains(strings.ToLower(output), "enable secret") {
		w.log.Info("password reset verified in running configuration")
		return true
	}

	w.log.Warn("could not verify password reset")
	return false
}

// Options parameterizes CompletePasswordReset's optional steps.
type Options struct {
	EnablePassword  string
	ConsolePassword string
	VTYPassword     string
}

// CompletePasswordReset runs verify → reset enable secret → optional
// console/VTY → restore confreg → save → verify, transitioning the
// machine to Complete on full success (spec §4.7).
func (w *Workflow) CompletePasswordReset(opts Options) bool {
	if !w.VerifyPrivilegedAccess() {
		w.machine.EnterErrorState(recovery.NewError(recovery.PromptUnknown, "verify_privileged_access", errNotPrivileged), "privileged access not available")
		return false
	}

	if !w.ResetEnableSecret(opts.EnablePassword) {
		w.machine.EnterErrorState(recovery.NewError(recovery.VerificationFailed, "reset_enable_secret", errResetFailed), "failed to reset enable secret")
		return false
	}

	w.ResetConsolePassword(opts.ConsolePassword)
	w.ResetVTYPassword(opts.VTYPassword)

	if !w.RestoreConfigRegister() {
		w.machine.EnterErrorState(recovery.NewError(recovery.VerificationFailed, "restore_config_register", errResetFailed), "failed to restore configuration register")
		return false
	}

	if !w.SaveConfiguration() {
		w.machine.EnterErrorState(recovery.NewError(recovery.VerificationFailed, "save_configuration", errResetFailed), "failed to save configuration")
		return false
	}

	w.VerifyPasswordReset()

	w.machine.Transition(recovery.Complete, "password reset complete", nil)
	return true
}
