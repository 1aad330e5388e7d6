package executor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/allbin/ciscoreset/logging"
	"github.com/allbin/ciscoreset/prompt"
	"github.com/allbin/ciscoreset/retry"
)

// ErrCommandSyntax marks a command as rejected for syntax reasons,
// i.e. one no amount of retrying will fix. Nothing in this package
// produces it directly today; it exists so a caller's isPermanent
// classification (recovery's error-kind mapping) has a stable target
// to wrap, mirroring the Python original's permanent_errors hook.
var ErrCommandSyntax = errors.New("executor: command rejected for syntax")

// Sink receives command-execution telemetry (spec §3/§9).
type Sink interface {
	RecordOperation(operation string, d time.Duration, success bool)
	RecordTimeout()
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) RecordOperation(string, time.Duration, bool) {}
func (NoopSink) RecordTimeout()                              {}

var morePattern = regexp.MustCompile(`(?i)--More--`)

// Executor sends commands down a Console and classifies the response
// via a prompt.Detector, retrying through a retry.Policy (spec §4.4).
type Executor struct {
	console Console
	detect  *prompt.Detector
	retry   *retry.Policy
	sink    Sink
	log     logging.Logger
}

// New builds an Executor. sink and log default to no-ops when nil.
func New(console Console, detect *prompt.Detector, policy *retry.Policy, sink Sink, log logging.Logger) *Executor {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Executor{console: console, detect: detect, retry: policy, sink: sink, log: log}
}

// Execute runs command, optionally retrying through the
// command_execution retry class, and returns the accumulated output.
// expectedMode may be nil to accept any recognized mode.
func (e *Executor) Execute(command string, expectedMode *prompt.Kind, timeout time.Duration, retryOnFailure, waitForEcho bool) (bool, string) {
	if !retryOnFailure {
		return e.executeOnce(command, expectedMode, timeout, waitForEcho)
	}

	operation := "execute_" + firstToken(command)
	var output string
	err := e.retry.Do(operation, retry.ConfigFor("command_execution"),
		func(err error) bool { return errors.Is(err, ErrCommandSyntax) },
		nil,
		func(attempt int) error {
			success, out := e.executeOnce(command, expectedMode, timeout, waitForEcho)
			output = out
			if success {
				return nil
			}
			return fmt.Errorf("command %q did not reach the expected state", command)
		},
	)
	return err == nil, output
}

func (e *Executor) executeOnce(command string, expectedMode *prompt.Kind, timeout time.Duration, waitForEcho bool) (bool, string) {
	start := time.Now()
	e.console.ClearOutputBuffer()

	n, err := e.console.Write([]byte(command))
	if err != nil || n == 0 {
		e.log.Warn("failed to write command", logging.F("command", command))
		return false, "failed to write command"
	}

	if waitForEcho {
		echoTimeout := timeout / 3
		if echoTimeout > 2*time.Second {
			echoTimeout = 2 * time.Second
		}
		echo := e.console.ReadOutput(echoTimeout)
		if !strings.Contains(echo, strings.TrimSpace(command)) {
			e.log.Debug("command echo not detected, continuing anyway", logging.F("command", command))
		}
	}

	var output strings.Builder
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		chunk := e.console.ReadOutput(500 * time.Millisecond)
		if chunk == "" {
			continue
		}
		output.WriteString(chunk)

		if morePattern.MatchString(chunk) {
			e.console.Write([]byte(" "))
			time.Sleep(100 * time.Millisecond)
			continue
		}
		acc := output.String()

		mode := e.detect.DetectPrompt(acc)
		if mode == nil {
			continue
		}
		if mode.Kind == prompt.Error {
			e.sink.RecordOperation("command_execution", time.Since(start), false)
			return false, acc
		}
		if expectedMode == nil || mode.Kind == *expectedMode {
			e.sink.RecordOperation("command_execution", time.Since(start), true)
			return true, acc
		}
	}

	e.sink.RecordTimeout()
	e.sink.RecordOperation("command_execution", time.Since(start), false)
	e.log.Warn("command execution timeout", logging.F("command", command))
	return false, output.String()
}

// EnterConfigMode sends "configure terminal" and expects ConfigMode.
func (e *Executor) EnterConfigMode() bool {
	cfg := prompt.ConfigMode
	ok, _ := e.Execute("configure terminal", &cfg, 10*time.Second, true, true)
	return ok
}

// ExitConfigMode sends "end", falling back to "exit" if that doesn't
// reach PrivilegedMode.
func (e *Executor) ExitConfigMode() bool {
	priv := prompt.PrivilegedMode
	if ok, _ := e.Execute("end", &priv, 10*time.Second, true, true); ok {
		return true
	}
	ok, _ := e.Execute("exit", &priv, 10*time.Second, true, true)
	return ok
}

// SaveConfig runs "copy running-config <target>", answering the
// "Destination filename" prompt with a bare CR, and verifies success
// by scanning for "bytes copied" or "[OK]".
func (e *Executor) SaveConfig(target string) bool {
	if target == "" {
		target = "startup-config"
	}
	command := fmt.Sprintf("copy running-config %s", target)
	_, output := e.Execute(command, nil, 60*time.Second, true, true)

	if strings.Contains(output, "Destination filename") {
		e.console.Write([]byte("\r"))
		time.Sleep(time.Second)
		output += e.console.ReadOutput(10 * time.Second)
	}

	ok := strings.Contains(strings.ToLower(output), "bytes copied") || strings.Contains(output, "[OK]")
	if ok {
		e.log.Info("configuration saved successfully")
	} else {
		e.log.Warn("configuration save may have failed", logging.F("tail", tail(output, 200)))
	}
	return ok
}

// SendPassword writes pw+CR without waiting for an echo, since
// passwords are typically not echoed back by the router.
func (e *Executor) SendPassword(pw string) bool {
	n, err := e.console.Write([]byte(pw + "\r"))
	time.Sleep(500 * time.Millisecond)
	return err == nil && n > 0
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
