package cmd

import "errors"

// errInterrupted marks a cleanly-handled SIGINT so Execute can map it
// to exit code 130 instead of the generic failure code 1 (spec §6).
var errInterrupted = errors.New("interrupted by user")

func exitCodeFor(err error) int {
	if errors.Is(err, errInterrupted) {
		return 130
	}
	return 1
}
