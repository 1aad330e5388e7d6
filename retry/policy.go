package retry

import (
	"fmt"
	"sync"
	"time"

	"github.com/allbin/ciscoreset/logging"
)

// Sink receives retry telemetry events. New substitutes NoopSink for a
// nil Sink.
type Sink interface {
	RecordRetry(operation string)
	RecordOperation(operation string, duration time.Duration, success bool)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) RecordRetry(string)                         {}
func (NoopSink) RecordOperation(string, time.Duration, bool) {}

// Record is one retry attempt's history entry.
type Record struct {
	Operation string
	Attempt   int
	Err       string
	Timestamp time.Time
}

// Policy runs operations under a named retry configuration, recording
// every retried attempt for later inspection via Stats.
type Policy struct {
	sink Sink
	log  logging.Logger

	mu      sync.Mutex
	history []Record
}

// New constructs a Policy. sink may be nil; log defaults to
// logging.Noop() when nil.
func New(sink Sink, log logging.Logger) *Policy {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Policy{sink: sink, log: log}
}

// OnRetry is invoked before the delay preceding each retried attempt.
type OnRetry func(attempt int, err error)

// Do runs fn under cfg, retrying on error; cfg.MaxRetries is the total
// number of attempts, so fn runs at most cfg.MaxRetries times.
// isPermanent, if non-nil, short-circuits retrying for errors it
// reports true for — the Go analogue of the reference implementation's
// permanent_errors exception-type list. onRetry may be nil.
func (p *Policy) Do(operation string, cfg Config, isPermanent func(error) bool, onRetry OnRetry, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		start := time.Now()
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				p.log.Info("operation succeeded after retrying", logging.F("operation", operation), logging.F("attempt", attempt))
				p.sink.RecordOperation(operation, time.Since(start), true)
			}
			return nil
		}

		lastErr = err

		if isPermanent != nil && isPermanent(err) {
			p.log.Error("operation failed with a permanent error", logging.F("operation", operation), logging.F("error", err))
			return err
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		p.log.Warn("operation attempt failed", logging.F("operation", operation), logging.F("attempt", attempt), logging.F("max_retries", cfg.MaxRetries), logging.F("error", err))
		p.sink.RecordRetry(operation)
		p.sink.RecordOperation(operation, 0, false)

		p.mu.Lock()
		p.history = append(p.history, Record{Operation: operation, Attempt: attempt, Err: err.Error(), Timestamp: start})
		p.mu.Unlock()

		if onRetry != nil {
			func() {
				defer func() { recover() }() // callback must never abort the retry loop
				onRetry(attempt, err)
			}()
		}

		delay := calcDelay(attempt, cfg)
		if delay > 0 {
			p.log.Debug("waiting before retry", logging.F("delay", delay), logging.F("next_attempt", attempt+1))
			time.Sleep(delay)
		}
	}

	p.log.Error("operation failed after exhausting retries", logging.F("operation", operation), logging.F("max_retries", cfg.MaxRetries))
	return fmt.Errorf("%s: exhausted %d attempts: %w", operation, cfg.MaxRetries, lastErr)
}

// Stats summarizes retry history, overall or for a single operation.
type Stats struct {
	TotalRetries int
	Operations   map[string]*OperationStats
}

// OperationStats is the per-operation breakdown within Stats.
type OperationStats struct {
	TotalRetries int
	MaxAttempt   int
	Errors       map[string]int
}

// GetRetryStatistics reproduces the reference implementation's
// get_retry_statistics, scoped to one operation when operation != "".
func (p *Policy) GetRetryStatistics(operation string) Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{Operations: map[string]*OperationStats{}}
	for _, r := range p.history {
		if operation != "" && r.Operation != operation {
			continue
		}
		stats.TotalRetries++

		op, ok := stats.Operations[r.Operation]
		if !ok {
			op = &OperationStats{Errors: map[string]int{}}
			stats.Operations[r.Operation] = op
		}
		op.TotalRetries++
		if r.Attempt > op.MaxAttempt {
			op.MaxAttempt = r.Attempt
		}
		op.Errors[r.Err]++
	}
	return stats
}
