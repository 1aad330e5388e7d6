package transport

import (
	"time"

	"golang.org/x/sys/unix"
)

// BreakMethod identifies one of the five break-signal strategies from
// spec §4.1. Dispatch is a single routine over this closed set rather
// than the teacher's list of function references.
type BreakMethod int

const (
	BreakStandard BreakMethod = iota
	BreakExtended
	BreakMultiple
	BreakIoctl
	BreakSignalToggle
)

func (m BreakMethod) String() string {
	switch m {
	case BreakStandard:
		return "standard"
	case BreakExtended:
		return "extended"
	case BreakMultiple:
		return "multiple"
	case BreakIoctl:
		return "ioctl"
	case BreakSignalToggle:
		return "signal_toggle"
	default:
		return "unknown"
	}
}

// breakOrder is the fixed attempt order used when the caller does not
// pin a single method (spec §4.1 table).
var breakOrder = []BreakMethod{BreakStandard, BreakExtended, BreakMultiple, BreakIoctl, BreakSignalToggle}

// Fallback ioctl request numbers for platforms whose headers don't
// expose TIOCSBRK/TIOCCBRK (spec §4.1). golang.org/x/sys/unix defines
// both on linux, so these only serve as the documented fallback value.
const (
	tiocsbrkFallback = 0x5427
	tioccbrkFallback = 0x5428
)

// BreakAttempt records one break-method invocation, per spec §3.
type BreakAttempt struct {
	Method    BreakMethod
	Duration  time.Duration
	Success   bool
	Timestamp time.Time
}

// SendBreak attempts the requested method, or all five methods in
// order, and returns true on the first success. Every attempt —
// success or failure — is recorded via the Sink.
func (p *Port) SendBreak(method *BreakMethod) bool {
	if method != nil {
		return p.sendBreakMethod(*method, defaultBreakDuration(*method))
	}

	for _, m := range breakOrder {
		if p.sendBreakMethod(m, defaultBreakDuration(m)) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func defaultBreakDuration(m BreakMethod) time.Duration {
	switch m {
	case BreakStandard:
		return 250 * time.Millisecond
	case BreakExtended:
		return 500 * time.Millisecond
	default:
		return 250 * time.Millisecond
	}
}

func (p *Port) sendBreakMethod(method BreakMethod, duration time.Duration) bool {
	var ok bool
	start := time.Now()

	switch method {
	case BreakStandard:
		ok = p.breakTCSBRKP(duration)
	case BreakExtended:
		ok = p.breakTCSBRKP(duration)
	case BreakMultiple:
		ok = p.breakMultiple(3, 100*time.Millisecond, 50*time.Millisecond)
	case BreakIoctl:
		ok = p.breakRawIoctl(duration)
	case BreakSignalToggle:
		ok = p.breakSignalToggle()
	default:
		ok = false
	}

	elapsed := time.Since(start)
	p.recordBreak(BreakAttempt{Method: method, Duration: elapsed, Success: ok, Timestamp: start})
	return ok
}

func (p *Port) recordBreak(a BreakAttempt) {
	p.mu.Lock()
	p.breakAttempts = append(p.breakAttempts, a)
	p.mu.Unlock()
	if p.sink != nil {
		p.sink.RecordBreakAttempt(a)
	}
}

// BreakAttempts returns a copy of every break-attempt record so far.
func (p *Port) BreakAttempts() []BreakAttempt {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]BreakAttempt, len(p.breakAttempts))
	copy(out, p.breakAttempts)
	return out
}

// breakTCSBRKP sends a kernel-timed BREAK via TCSBRKP, the closest
// Linux analogue to a "native send_break(duration)" call. The argument
// is in tenths of a second; zero selects the kernel's own default
// (roughly 0.25-0.5s), matching the behavior of a plain TCSBRK.
func (p *Port) breakTCSBRKP(duration time.Duration) bool {
	fd, ok := p.fdLocked()
	if !ok {
		return false
	}
	tenths := int(duration / (100 * time.Millisecond))
	if tenths <= 0 {
		tenths = 1
	}
	return unix.IoctlSetInt(fd, unix.TCSBRKP, tenths) == nil
}

// breakMultiple sends count short TCSBRKP pulses separated by gap.
func (p *Port) breakMultiple(count int, duration, gap time.Duration) bool {
	success := false
	for i := 0; i < count; i++ {
		if p.breakTCSBRKP(duration) {
			success = true
		}
		if i < count-1 {
			time.Sleep(gap)
		}
	}
	return success
}

// breakRawIoctl frames a sleep between raw TIOCSBRK/TIOCCBRK calls,
// giving the caller direct control over the break's duration.
func (p *Port) breakRawIoctl(duration time.Duration) bool {
	fd, ok := p.fdLocked()
	if !ok {
		return false
	}
	if err := unix.IoctlSetInt(fd, unix.TIOCSBRK, 0); err != nil {
		return false
	}
	time.Sleep(duration)
	return unix.IoctlSetInt(fd, unix.TIOCCBRK, 0) == nil
}

// breakSignalToggle drops and raises DTR, then RTS, with 0.1s waits.
func (p *Port) breakSignalToggle() bool {
	fd, ok := p.fdLocked()
	if !ok {
		return false
	}
	steps := []struct {
		set  bool
		bits int
	}{
		{false, unix.TIOCM_DTR},
		{true, unix.TIOCM_DTR},
		{false, unix.TIOCM_RTS},
		{true, unix.TIOCM_RTS},
	}
	for i, step := range steps {
		req := unix.TIOCMBIC
		if step.set {
			req = unix.TIOCMBIS
		}
		if err := unix.IoctlSetInt(fd, req, step.bits); err != nil {
			return false
		}
		if i < len(steps)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return true
}
