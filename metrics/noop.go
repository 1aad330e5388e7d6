package metrics

import (
	"time"

	"github.com/allbin/ciscoreset/transport"
)

// Noop discards every event. It satisfies the same Sink interfaces as
// Collector so components never need a nil check (spec §9 "optional
// collaborators").
type Noop struct{}

func (Noop) RecordOperation(string, time.Duration, bool)         {}
func (Noop) RecordRetry(string)                                  {}
func (Noop) RecordBytes(sent, received int)                      {}
func (Noop) RecordTimeout()                                      {}
func (Noop) RecordBreakAttempt(transport.BreakAttempt)           {}
func (Noop) RecordStateTransition(from, to string, at time.Time) {}
func (Noop) RecordRommonEntry(at time.Time)                      {}
func (Noop) RecordBootDuration(d time.Duration)                  {}
func (Noop) StartConnection()                                    {}
func (Noop) Snapshot() Snapshot                                  { return Snapshot{} }
