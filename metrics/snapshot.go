// Package metrics is the single concrete implementation of the narrow
// Sink interfaces every domain package declares for itself (transport,
// recovery, rommon, executor, retry). Collector satisfies all of them
// structurally; only this package imports transport, for the
// BreakAttempt type carried in a Snapshot.
package metrics

import (
	"time"

	"github.com/allbin/ciscoreset/transport"
)

// OperationStats is the count/sum/min/max/avg breakdown for one named
// operation (spec §3 Metrics snapshot).
type OperationStats struct {
	Count   int
	Sum     time.Duration
	Min     time.Duration
	Max     time.Duration
	Success int
	Failure int
}

// Avg is Sum/Count, or zero when Count is zero.
func (s OperationStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / time.Duration(s.Count)
}

// TransitionRecord is one entry in the ring buffer of the last 1000
// recovery-state transitions.
type TransitionRecord struct {
	From string
	To   string
	At   time.Time
}

// Snapshot is a point-in-time copy of everything a Collector tracks,
// per spec §3's Metrics snapshot.
type Snapshot struct {
	Operations       map[string]OperationStats
	RetryCounts      map[string]int
	BytesSent        int
	BytesReceived    int
	ConnectionStart  time.Time
	ConnectionUptime time.Duration
	TimeoutCount     int
	Transitions      []TransitionRecord
	BreakAttempts    []transport.BreakAttempt
	RommonEntryTime  time.Time
	BootDuration     time.Duration
}
