// Package cmd is the cobra CLI surface (spec §6, §4.11 C11). It is a
// thin composition layer: it wires transport/prompt/retry/executor/
// recovery/rommon/reset/inventory together and prints the §7
// user-visible report. It holds no domain logic of its own.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagPort       string
	flagBaud       int
	flagAutoDetect bool
	flagDetectOnly bool
	flagLogLevel   string
	flagNoTUI      bool
)

var rootCmd = &cobra.Command{
	Use:   "ciscoreset",
	Short: "Automated console password recovery for Cisco ISR routers",
	Long: `ciscoreset drives a Cisco 4321 ISR's console line through the
break / ROM-monitor / password-reset procedure: it waits for the boot
banner, sends a break to drop into ROM monitor, sets the configuration
register to skip the startup config, lets IOS boot clean, resets the
enable secret (and optionally the console/VTY passwords), restores the
configuration register, and saves the result.

Run with --detect-only to just collect a system inventory and skip the
password reset entirely.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRecover,
}

// Execute runs the root command and exits the process with the
// matching exit code (0 success, 1 failure, 130 user interrupt per
// spec §6), derived from the returned error by exitCodeFor.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "explicit serial device path (e.g. /dev/ttyUSB0)")
	rootCmd.PersistentFlags().IntVar(&flagBaud, "baud", 9600, "baud rate (default matches the Cisco console default)")
	rootCmd.PersistentFlags().BoolVar(&flagAutoDetect, "auto-detect", false, "scan for a connected router instead of requiring --port")
	rootCmd.PersistentFlags().BoolVar(&flagDetectOnly, "detect-only", false, "run system inventory and exit, skipping password reset")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR")
	rootCmd.PersistentFlags().BoolVar(&flagNoTUI, "no-tui", false, "disable the interactive UI (this build is always non-interactive; accepted for compatibility)")

	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	viper.SetEnvPrefix("CISCORESET")
	viper.AutomaticEnv()
}
