// Package executor sends commands down a console line and classifies
// the response, retrying transient failures and absorbing pagination
// prompts along the way (spec §4.4).
package executor

import "time"

// Console is the narrow slice of transport.Port that Executor needs.
// Depending on this instead of *transport.Port keeps executor testable
// against a fake and keeps the import graph one-directional.
type Console interface {
	Write(data []byte) (int, error)
	ReadOutput(timeout time.Duration) string
	ClearOutputBuffer()
}
