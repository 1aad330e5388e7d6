package metrics

import (
	"sync"
	"time"

	"github.com/allbin/ciscoreset/transport"
)

const transitionRingSize = 1000

// Collector is an in-memory, lock-protected implementation of every
// Sink interface the domain packages declare (transport.Sink,
// retry.Sink, and the recovery/rommon/executor equivalents) — duck
// typing means Collector never needs those packages' imports, so it
// alone may import transport for the BreakAttempt type.
type Collector struct {
	mu sync.Mutex

	operations    map[string]OperationStats
	retryCounts   map[string]int
	bytesSent     int
	bytesReceived int
	timeoutCount  int

	connectionStart time.Time

	transitions   []TransitionRecord
	breakAttempts []transport.BreakAttempt

	rommonEntryTime time.Time
	bootDuration    time.Duration
}

// NewCollector returns an empty Collector ready for use.
func NewCollector() *Collector {
	return &Collector{
		operations:  map[string]OperationStats{},
		retryCounts: map[string]int{},
	}
}

// RecordOperation folds one operation's outcome into its running
// count/sum/min/max/success/failure tally.
func (c *Collector) RecordOperation(op string, d time.Duration, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.operations[op]
	s.Count++
	s.Sum += d
	if s.Count == 1 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	if success {
		s.Success++
	} else {
		s.Failure++
	}
	c.operations[op] = s
}

// RecordRetry increments the named operation's retry counter.
func (c *Collector) RecordRetry(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryCounts[op]++
}

// RecordBytes adds to the running sent/received byte totals.
func (c *Collector) RecordBytes(sent, received int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytesSent += sent
	c.bytesReceived += received
}

// RecordTimeout increments the timeout counter.
func (c *Collector) RecordTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeoutCount++
}

// RecordBreakAttempt appends one break-signal attempt.
func (c *Collector) RecordBreakAttempt(a transport.BreakAttempt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakAttempts = append(c.breakAttempts, a)
}

// RecordStateTransition appends to the ring buffer of the last 1000
// recovery-state transitions, dropping the oldest entry once full.
func (c *Collector) RecordStateTransition(from, to string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transitions = append(c.transitions, TransitionRecord{From: from, To: to, At: at})
	if len(c.transitions) > transitionRingSize {
		c.transitions = c.transitions[len(c.transitions)-transitionRingSize:]
	}
}

// RecordRommonEntry stamps the time ROM monitor was entered.
func (c *Collector) RecordRommonEntry(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rommonEntryTime = at
}

// RecordBootDuration stamps the measured IOS boot duration.
func (c *Collector) RecordBootDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bootDuration = d
}

// StartConnection stamps the connection start time, used to compute
// ConnectionUptime in Snapshot.
func (c *Collector) StartConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionStart = time.Now()
}

// Snapshot returns a point-in-time copy of everything tracked so far.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops := make(map[string]OperationStats, len(c.operations))
	for k, v := range c.operations {
		ops[k] = v
	}
	retries := make(map[string]int, len(c.retryCounts))
	for k, v := range c.retryCounts {
		retries[k] = v
	}
	transitions := make([]TransitionRecord, len(c.transitions))
	copy(transitions, c.transitions)
	breaks := make([]transport.BreakAttempt, len(c.breakAttempts))
	copy(breaks, c.breakAttempts)

	var uptime time.Duration
	if !c.connectionStart.IsZero() {
		uptime = time.Since(c.connectionStart)
	}

	return Snapshot{
		Operations:       ops,
		RetryCounts:      retries,
		BytesSent:        c.bytesSent,
		BytesReceived:    c.bytesReceived,
		ConnectionStart:  c.connectionStart,
		ConnectionUptime: uptime,
		TimeoutCount:     c.timeoutCount,
		Transitions:      transitions,
		BreakAttempts:    breaks,
		RommonEntryTime:  c.rommonEntryTime,
		BootDuration:     c.bootDuration,
	}
}
