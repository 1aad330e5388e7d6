// Package rommon sequences boot detection, the break signal, config
// register manipulation, reset, and IOS re-appearance — the ROM
// monitor automation in spec §4.6.
package rommon

import (
	"fmt"
	"regexp"
	"time"

	"github.com/allbin/ciscoreset/logging"
	"github.com/allbin/ciscoreset/prompt"
	"github.com/allbin/ciscoreset/recovery"
	"github.com/allbin/ciscoreset/retry"
	"github.com/allbin/ciscoreset/transport"
)

// Transport is the narrow slice of transport.Port a Driver needs:
// buffer access, writes and the break-signal strategies.
type Transport interface {
	Write(data []byte) (int, error)
	ReadOutput(timeout time.Duration) string
	GetOutputBuffer() string
	ClearOutputBuffer()
	SendBreak(method *transport.BreakMethod) bool
}

// Sink receives ROM-monitor telemetry (spec §3/§9).
type Sink interface {
	RecordRommonEntry(at time.Time)
	RecordBootDuration(d time.Duration)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) RecordRommonEntry(time.Time)     {}
func (NoopSink) RecordBootDuration(time.Duration) {}

const (
	maxBreakAttempts = 5
	breakInterval    = 2 * time.Second
)

// Driver sequences wait-for-boot, break, confreg, reset, and
// wait-for-IOS through a Transport, announcing transitions to a
// recovery.Machine as it goes.
type Driver struct {
	conn    Transport
	detect  *prompt.Detector
	machine *recovery.Machine
	retry   *retry.Policy
	sink    Sink
	log     logging.Logger
}

// New builds a Driver. sink and log default to no-ops when nil.
func New(conn Transport, detect *prompt.Detector, machine *recovery.Machine, policy *retry.Policy, sink Sink, log logging.Logger) *Driver {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Driver{conn: conn, detect: detect, machine: machine, retry: policy, sink: sink, log: log}
}

// WaitForBoot polls the output buffer every 0.5s for a boot banner.
// Failure is non-fatal (spec §4.6): the caller may still attempt the
// break sequence even if no banner was ever observed.
func (d *Driver) WaitForBoot(timeout time.Duration) bool {
	d.log.Info("waiting for boot sequence")
	d.machine.Transition(recovery.WaitingBoot, "waiting for boot", nil)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if d.detect.IsBooting(d.conn.GetOutputBuffer()) {
			d.log.Info("boot sequence detected")
			return true
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

// SendBreakSequence attempts up to five break pulses spaced
// breakInterval apart, checking for the ROM-monitor prompt after each.
// On exhaustion the state remains SendingBreak so the caller may retry
// (spec §4.6).
func (d *Driver) SendBreakSequence(timeout time.Duration) bool {
	d.log.Info("sending break sequence")
	d.machine.Transition(recovery.SendingBreak, "sending break sequence", nil)

	start := time.Now()
	for attempt := 1; attempt <= maxBreakAttempts; attempt++ {
		if time.Since(start) > timeout {
			break
		}

		d.log.Info("break attempt", logging.F("attempt", attempt), logging.F("max_attempts", maxBreakAttempts))

		if d.conn.SendBreak(nil) {
			time.Sleep(time.Second)
			mode := d.detect.DetectPrompt(d.conn.GetOutputBuffer())
			if mode != nil && mode.Kind == prompt.RomMonitor {
				now := time.Now()
				d.sink.RecordRommonEntry(now)
				d.log.Info("ROM monitor entered", logging.F("attempt", attempt))
				d.machine.Transition(recovery.RomMonitor, "entered ROM monitor", nil)
				return true
			}
		}

		if attempt < maxBreakAttempts {
			time.Sleep(breakInterval)
		}
	}

	d.log.Error("failed to enter ROM monitor after break sequence")
	return false
}

// SetConfigRegister writes "confreg <value>" and verifies the
// response contains value at a word boundary, falling back to a bare
// "confreg" query if the first response didn't confirm it. The whole
// operation retries per the rommon_entry retry class (spec §4.6;
// tightened from the reference implementation's bare substring match
// per the §9 open question).
func (d *Driver) SetConfigRegister(value string) bool {
	d.log.Info("setting configuration register", logging.F("value", value))

	verify := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(value) + `\b`)

	err := d.retry.Do("set_confreg", retry.Config{MaxRetries: 3, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second, Strategy: retry.ExponentialBackoff}, nil, nil,
		func(attempt int) error {
			d.conn.Write([]byte(fmt.Sprintf("confreg %s", value)))
			time.Sleep(time.Second)
			output := d.conn.ReadOutput(5 * time.Second)
			if verify.MatchString(output) {
				return nil
			}

			d.conn.Write([]byte("confreg"))
			time.Sleep(time.Second)
			verifyOutput := d.conn.ReadOutput(5 * time.Second)
			if verify.MatchString(verifyOutput) {
				return nil
			}
			return fmt.Errorf("confreg %s not confirmed in response", value)
		},
	)

	if err != nil {
		d.log.Error("failed to set configuration register", logging.F("error", err))
		d.machine.EnterErrorState(recovery.NewError(recovery.VerificationFailed, "set_confreg", err), "failed to set configuration register")
		return false
	}

	d.machine.Transition(recovery.ConfigRegSet, fmt.Sprintf("config register set to %s", value), nil)
	d.log.Info("configuration register set", logging.F("value", value))
	return true
}

// RebootRouter writes "reset" and clears the output buffer. It does
// not wait for the reboot to complete (spec §4.6).
func (d *Driver) RebootRouter() bool {
	d.log.Info("rebooting router")
	d.machine.Transition(recovery.Rebooting, "rebooting router", nil)

	d.conn.Write([]byte("reset"))
	time.Sleep(2 * time.Second)
	d.conn.ClearOutputBuffer()

	d.log.Info("reset command sent, waiting for reboot")
	return true
}

// WaitForIOSBoot polls until the detector reports PrivilegedMode or
// UserMode. While a boot banner continues to appear the internal boot
// timer is reset, so the measured boot duration runs from the last
// observed banner to the first prompt (spec §4.6).
func (d *Driver) WaitForIOSBoot(timeout time.Duration) bool {
	d.log.Info("waiting for IOS to boot")

	start := time.Now()
	bootStart := start

	for time.Since(start) < timeout {
		mode := d.detect.DetectPrompt(d.conn.GetOutputBuffer())
		if mode != nil && mode.Kind == prompt.Booting {
			bootStart = time.Now()
		}

		if mode != nil && (mode.Kind == prompt.PrivilegedMode || mode.Kind == prompt.UserMode) {
			duration := time.Since(bootStart)
			d.sink.RecordBootDuration(duration)
			d.log.Info("IOS booted successfully", logging.F("mode", mode.Kind.String()), logging.F("hostname", mode.Hostname))
			d.machine.Transition(recovery.IosNoConfig, "IOS booted without startup config", nil)
			return true
		}

		time.Sleep(500 * time.Millisecond)
	}

	d.log.Error("timeout waiting for IOS boot")
	d.machine.EnterErrorState(recovery.NewError(recovery.Timeout, "wait_for_ios_boot", fmt.Errorf("no prompt within %s", timeout)), "IOS did not boot in time")
	return false
}

// EnterRommon composes WaitForBoot and SendBreakSequence. A missed
// boot banner only logs a warning; the break is attempted regardless.
func (d *Driver) EnterRommon(bootTimeout, breakTimeout time.Duration) bool {
	if !d.WaitForBoot(bootTimeout) {
		d.log.Warn("boot sequence not detected, attempting break anyway")
	}
	return d.SendBreakSequence(breakTimeout)
}

// CompleteRecoverySetup composes EnterRommon, SetConfigRegister
// (0x2142), RebootRouter, and WaitForIOSBoot with their default
// timeouts (spec §4.6).
func (d *Driver) CompleteRecoverySetup() bool {
	if !d.EnterRommon(60*time.Second, 60*time.Second) {
		return false
	}
	if !d.SetConfigRegister("0x2142") {
		return false
	}
	if !d.RebootRouter() {
		return false
	}
	return d.WaitForIOSBoot(120 * time.Second)
}
