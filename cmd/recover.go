package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/allbin/ciscoreset/executor"
	"github.com/allbin/ciscoreset/inventory"
	"github.com/allbin/ciscoreset/logging"
	"github.com/allbin/ciscoreset/metrics"
	"github.com/allbin/ciscoreset/prompt"
	"github.com/allbin/ciscoreset/recovery"
	"github.com/allbin/ciscoreset/remediation"
	"github.com/allbin/ciscoreset/reset"
	"github.com/allbin/ciscoreset/retry"
	"github.com/allbin/ciscoreset/rommon"
	"github.com/allbin/ciscoreset/transport"
)

func parseLogLevel(s string) logrus.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARNING", "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// buildLoggers wires the main log (text + JSON-lines, spec §6), a
// dedicated command log for the executor, and a dedicated
// state-transition log for the recovery machine. logging.Multi fans
// the main log out to each dedicated file alongside its own.
func buildLoggers(level logrus.Level) (mainLog, execLog, machineLog logging.Logger) {
	text := logging.NewFileLogger(logging.FileLoggerOptions{Path: "ciscoreset.log", Format: logging.FormatText, Level: level})
	jsonl := logging.NewFileLogger(logging.FileLoggerOptions{Path: "ciscoreset.jsonl", Format: logging.FormatJSONLines, Level: level})
	mainLog = logging.Multi(text, jsonl)

	cmdLog := logging.NewCommandLogger("ciscoreset_commands.jsonl")
	transLog := logging.NewTransitionLogger("ciscoreset_transitions.jsonl")

	return mainLog, logging.Multi(mainLog, cmdLog), logging.Multi(mainLog, transLog)
}

func resolveDevice() (string, error) {
	if flagAutoDetect {
		return transport.AutoDetect()
	}
	if flagPort == "" {
		return "", errors.New("either --port or --auto-detect is required")
	}
	return flagPort, nil
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}

// writeBackup writes content to name_TIMESTAMP.txt, logging but not
// failing the run if the write fails — backups are a courtesy, not a
// recovery precondition (spec §12).
func writeBackup(log logging.Logger, name, content string) {
	if content == "" {
		return
	}
	path := fmt.Sprintf("%s_%s.txt", name, timestamp())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Warn("failed to write backup file", logging.F("path", path), logging.F("error", err))
		return
	}
	log.Info("wrote backup file", logging.F("path", path))
}

func kindFromOpenError(err error) recovery.Kind {
	switch {
	case errors.Is(err, transport.ErrDeviceNotFound):
		return recovery.PortNotFound
	case errors.Is(err, transport.ErrPermissionDenied):
		return recovery.PortPermissionDenied
	case errors.Is(err, transport.ErrPortBusy):
		return recovery.PortBusy
	default:
		return recovery.PortIO
	}
}

func printFailure(kind recovery.Kind) {
	advice := remediation.ForKind(kind)
	fmt.Fprintln(os.Stderr, advice.Title)
	fmt.Fprintln(os.Stderr, advice.Explanation)
	for _, s := range advice.Suggestions {
		fmt.Fprintln(os.Stderr, "  -", s)
	}
}

func runRecover(cmd *cobra.Command, args []string) error {
	device, err := resolveDevice()
	if err != nil {
		printFailure(recovery.PortNotFound)
		return err
	}

	level := parseLogLevel(flagLogLevel)
	mainLog, execLog, machineLog := buildLoggers(level)

	collector := metrics.NewCollector()
	port := transport.New(collector, mainLog)

	if err := port.Open(device, transport.WithBaudRate(flagBaud)); err != nil {
		kind := kindFromOpenError(err)
		printFailure(kind)
		return fmt.Errorf("opening %s: %w", device, err)
	}

	interrupted := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		mainLog.Warn("interrupt received, closing port")
		close(interrupted)
		port.Close()
	}()
	defer func() {
		signal.Stop(sig)
		port.Close()
	}()

	detect := prompt.NewDetector()
	retryPolicy := retry.New(collector, mainLog)
	machine := recovery.NewMachine(collector, machineLog)
	exec := executor.New(port, detect, retryPolicy, collector, execLog)
	driver := rommon.New(port, detect, machine, retryPolicy, collector, mainLog)

	machine.Transition(recovery.Connected, "serial port opened", map[string]any{"device": device})

	ok := runProcedure(port, exec, driver, machine, mainLog)

	select {
	case <-interrupted:
		return errInterrupted
	default:
	}

	snap := collector.Snapshot()
	if err := snap.WriteJSONFile(fmt.Sprintf("metrics_%s.json", timestamp())); err != nil {
		mainLog.Warn("failed to write metrics export", logging.F("error", err))
	}

	if !ok {
		kind := recovery.UnknownKind
		for _, h := range machine.History() {
			if h.To == recovery.ErrorState {
				if k, found := h.Data["kind"]; found {
					if s, ok := k.(string); ok {
						kind = kindForString(s)
					}
				}
			}
		}
		printFailure(kind)
		return errors.New("recovery procedure failed")
	}

	fmt.Println("recovery procedure completed successfully")
	return nil
}

func kindForString(s string) recovery.Kind {
	all := []recovery.Kind{
		recovery.PortNotFound, recovery.PortPermissionDenied, recovery.PortBusy, recovery.PortIO,
		recovery.WriteFailed, recovery.Timeout, recovery.IllegalTransition, recovery.CommandSyntax,
		recovery.VerificationFailed, recovery.PromptUnknown, recovery.InterruptedByUser,
	}
	for _, k := range all {
		if k.String() == s {
			return k
		}
	}
	return recovery.UnknownKind
}

// runProcedure sequences EnterRommon → confreg backup → SetConfigRegister
// → RebootRouter → WaitForIOSBoot, then either inventory detection
// (--detect-only) or the full password-reset workflow.
func runProcedure(port *transport.Port, exec *executor.Executor, driver *rommon.Driver, machine *recovery.Machine, log logging.Logger) bool {
	if !driver.EnterRommon(60*time.Second, 60*time.Second) {
		return false
	}

	// Capture the original register before it's overwritten, per the
	// §12 config-register backup (spec §3 State checkpoint).
	port.ClearOutputBuffer()
	port.Write([]byte("confreg"))
	confregOutput := port.ReadOutput(5 * time.Second)
	machine.SetOriginalConfigRegister(confregOutput)
	writeBackup(log, "config_register", confregOutput)

	if !driver.SetConfigRegister("0x2142") {
		return false
	}
	if !driver.RebootRouter() {
		return false
	}
	if !driver.WaitForIOSBoot(120 * time.Second) {
		return false
	}

	if flagDetectOnly {
		machine.Transition(recovery.SystemDetection, "running system detection", nil)
		detector := inventory.New(exec, log)
		rec := detector.DetectAll()
		return writeInventory(rec, log)
	}

	if ok, startupConfig := exec.Execute("show startup-config", nil, 15*time.Second, false, true); ok {
		machine.SetConfigBackup(startupConfig)
		writeBackup(log, "startup_config", startupConfig)
	}

	workflow := reset.New(exec, machine, reset.NewTerminalInput(), log)
	return workflow.CompletePasswordReset(reset.Options{})
}

func writeInventory(rec inventory.Record, log logging.Logger) bool {
	stamp := timestamp()
	ok := true

	if data, err := rec.JSON(); err == nil {
		if err := os.WriteFile(fmt.Sprintf("detection_%s.json", stamp), data, 0o644); err != nil {
			log.Error("failed to write JSON inventory export", logging.F("error", err))
			ok = false
		}
	}
	if data, err := rec.YAML(); err == nil {
		if err := os.WriteFile(fmt.Sprintf("detection_%s.yaml", stamp), data, 0o644); err != nil {
			log.Error("failed to write YAML inventory export", logging.F("error", err))
			ok = false
		}
	}
	if err := os.WriteFile(fmt.Sprintf("detection_%s.txt", stamp), []byte(rec.Text()), 0o644); err != nil {
		log.Error("failed to write text inventory export", logging.F("error", err))
		ok = false
	}

	fmt.Print(rec.Text())
	return ok
}
