// Package remediation turns a recovery.Kind into the user-visible
// title, explanation, and ordered suggestion list spec §7 requires for
// every reported failure.
package remediation

import "github.com/allbin/ciscoreset/recovery"

// Advice is what the CLI prints for a failed operation.
type Advice struct {
	Title       string
	Explanation string
	Suggestions []string
}

var table = map[recovery.Kind]Advice{
	recovery.PortNotFound: {
		Title:       "Serial port not found",
		Explanation: "The configured device path does not exist.",
		Suggestions: []string{
			"Run with --auto-detect to scan for connected adapters",
			"Check the USB-to-serial adapter is plugged in",
			"List candidate devices under /dev/ttyUSB*, /dev/ttyACM*",
		},
	},
	recovery.PortPermissionDenied: {
		Title:       "Permission denied opening the port",
		Explanation: "The current user lacks access to the serial device.",
		Suggestions: []string{
			"Add the current user to the dialout group and re-login",
			"Check the device file's group ownership with ls -l",
			"Run as a user with access, or adjust udev rules",
		},
	},
	recovery.PortBusy: {
		Title:       "Serial port is busy",
		Explanation: "Another process already has the device open.",
		Suggestions: []string{
			"Close any other terminal program using this port",
			"Check for a stale minicom/screen/picocom session",
			"Unplug and replug the adapter if no process is found",
		},
	},
	recovery.PortIO: {
		Title:       "Serial I/O error",
		Explanation: "A read or write to the device failed unexpectedly.",
		Suggestions: []string{
			"Check the USB cable and adapter seating",
			"Try a different USB port",
			"Retry the operation; transient I/O errors are common on cheap adapters",
		},
	},
	recovery.WriteFailed: {
		Title:       "Failed to write to the console",
		Explanation: "A command or keystroke could not be sent to the router.",
		Suggestions: []string{
			"Confirm the port is still open and the cable is connected",
			"Retry the operation",
		},
	},
	recovery.Timeout: {
		Title:       "Operation timed out",
		Explanation: "The router did not reach the expected state in time.",
		Suggestions: []string{
			"Power-cycle the router and try again",
			"Confirm the console cable and baud rate (default 9600)",
			"Increase the command timeout if this is a slow device",
		},
	},
	recovery.IllegalTransition: {
		Title:       "Unexpected recovery state",
		Explanation: "The recovery procedure reached a state it didn't expect from the current step.",
		Suggestions: []string{
			"Restart the recovery procedure from the beginning",
			"Check the console output for unexpected router behavior",
		},
	},
	recovery.CommandSyntax: {
		Title:       "Command rejected by the router",
		Explanation: "The router reported a syntax or ambiguity error for a command this tool sent.",
		Suggestions: []string{
			"Check the router's IOS version supports the attempted command",
			"File a bug report with the router's \"show version\" output",
		},
	},
	recovery.VerificationFailed: {
		Title:       "Verification failed",
		Explanation: "A change was made but could not be confirmed afterward.",
		Suggestions: []string{
			"Re-run the verification step manually over the console",
			"Check for typos in the value that was set",
		},
	},
	recovery.PromptUnknown: {
		Title:       "Unrecognized console output",
		Explanation: "The console produced output this tool couldn't classify into a known router mode.",
		Suggestions: []string{
			"Check the console for a custom banner or unexpected prompt",
			"Capture the raw output and compare against a known-good session",
		},
	},
	recovery.InterruptedByUser: {
		Title:       "Interrupted",
		Explanation: "The operation was cancelled by the user.",
		Suggestions: []string{
			"Re-run the command to resume from a clean connection",
		},
	},
}

// ForKind returns the user-visible advice for kind, or a generic
// fallback for an unrecognized kind.
func ForKind(kind recovery.Kind) Advice {
	if advice, ok := table[kind]; ok {
		return advice
	}
	return Advice{
		Title:       "Operation failed",
		Explanation: "An unclassified error occurred.",
		Suggestions: []string{"Check the logs for more detail and retry the operation"},
	}
}
