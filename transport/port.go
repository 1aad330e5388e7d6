// Package transport owns a direct serial (TTY) line to a console: open
// contract, background reader, write-with-CR normalization, and the five
// break-signal strategies a router's bootloader recognizes (spec §4.1).
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/allbin/ciscoreset/logging"
	"golang.org/x/sys/unix"
)

// Sink receives transport-level metrics events. Implementations must be
// safe for concurrent use; New substitutes NoopSink for a nil Sink.
type Sink interface {
	RecordBreakAttempt(BreakAttempt)
	RecordBytes(sent, received int)
	StartConnection()
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) RecordBreakAttempt(BreakAttempt) {}
func (NoopSink) RecordBytes(sent, received int)  {}
func (NoopSink) StartConnection()                {}

// Port owns a single open serial line. At most one Port may be open at
// a time per instance (spec §3 invariant); Open is idempotent-refusing,
// not idempotent-succeeding.
type Port struct {
	mu     sync.RWMutex
	fd     int
	open   bool
	device string
	config Config

	reader *reader

	connectionStart time.Time
	breakAttempts   []BreakAttempt

	sink Sink
	log  logging.Logger
}

// New constructs an unopened Port. sink may be nil; log defaults to
// logging.Noop() when nil.
func New(sink Sink, log logging.Logger) *Port {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Port{fd: -1, sink: sink, log: log}
}

// Open configures and opens device per Config (defaults merged with
// opts). Opening a second line while one is already open fails with
// ErrAlreadyOpen.
func (p *Port) Open(device string, opts ...Option) error {
	p.mu.Lock()
	if p.open {
		p.mu.Unlock()
		return ErrAlreadyOpen
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			p.mu.Unlock()
			return err
		}
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		p.mu.Unlock()
		return classifyOpenError(device, err)
	}

	if err := configureTermios(fd, cfg); err != nil {
		unix.Close(fd)
		p.mu.Unlock()
		return err
	}

	unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)

	p.fd = fd
	p.device = device
	p.config = cfg
	p.open = true
	p.connectionStart = time.Now()
	p.breakAttempts = nil
	p.mu.Unlock()

	p.sink.StartConnection()
	p.reader = newReader(p)
	p.reader.start()

	p.log.Info("opened serial port", logging.F("device", device), logging.F("baud", cfg.BaudRate))
	return nil
}

// fdLocked returns the open fd, or ok=false if the port is closed.
func (p *Port) fdLocked() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open {
		return -1, false
	}
	return p.fd, true
}

// IsOpen reports whether the port is currently open.
func (p *Port) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open
}

// Close stops the reader, closes the fd, and is safe to call more than
// once. It waits up to 2s for the reader to exit before closing the fd
// (spec §5).
func (p *Port) Close() error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil
	}
	fd := p.fd
	p.open = false
	r := p.reader
	p.mu.Unlock()

	if r != nil {
		r.stop(2 * time.Second)
	}

	err := unix.Close(fd)
	p.log.Info("closed serial port", logging.F("device", p.device))
	return err
}

// Write appends a trailing CR if the payload doesn't already end in
// CR or LF, then flushes. A write to a closed port returns 0 and no
// error, per spec §4.1.
func (p *Port) Write(data []byte) (int, error) {
	fd, ok := p.fdLocked()
	if !ok {
		return 0, nil
	}

	if len(data) == 0 || (data[len(data)-1] != '\r' && data[len(data)-1] != '\n') {
		data = append(append([]byte{}, data...), '\r')
	}

	n, err := unix.Write(fd, data)
	if err != nil {
		p.log.Error("write failed", logging.F("error", err))
		return n, fmt.Errorf("%w: %v", ErrPortIO, err)
	}
	unix.IoctlSetInt(fd, unix.TCSBRK, 1) //nolint:errcheck // best-effort drain is covered by Drain()
	p.sink.RecordBytes(n, 0)
	return n, nil
}

// WriteContext is Write with context-cancellation support.
func (p *Port) WriteContext(ctx context.Context, data []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := p.Write(data)
		ch <- result{n, err}
	}()
	select {
	case r := <-ch:
		return r.n, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// ReadOutput drains the reader's buffer, waiting up to timeout for text
// if it is empty, and returns it. An empty return is not an error.
func (p *Port) ReadOutput(timeout time.Duration) string {
	p.mu.RLock()
	r := p.reader
	p.mu.RUnlock()
	if r == nil {
		return ""
	}
	return r.drain(timeout)
}

// GetOutputBuffer returns the reader's buffer without consuming it. The
// buffer is the one ReadOutput drains, so it holds only text received
// since the last ReadOutput or ClearOutputBuffer call, not the whole
// session's output.
func (p *Port) GetOutputBuffer() string {
	p.mu.RLock()
	r := p.reader
	p.mu.RUnlock()
	if r == nil {
		return ""
	}
	return r.buffer()
}

// ClearOutputBuffer empties the reader's single text buffer under its
// lock.
func (p *Port) ClearOutputBuffer() {
	p.mu.RLock()
	r := p.reader
	p.mu.RUnlock()
	if r != nil {
		r.clear()
	}
}

// Drain waits until previously written output has been transmitted.
func (p *Port) Drain() error {
	fd, ok := p.fdLocked()
	if !ok {
		return ErrNotOpen
	}
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}

func classifyOpenError(device string, err error) error {
	switch err {
	case unix.ENOENT:
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	case unix.EACCES, unix.EPERM:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, device)
	case unix.EBUSY:
		return fmt.Errorf("%w: %s", ErrPortBusy, device)
	default:
		return fmt.Errorf("%w: opening %s: %v", ErrPortIO, device, err)
	}
}

func configureTermios(fd int, cfg Config) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("%w: get termios: %v", ErrPortIO, err)
	}

	t.Iflag = 0
	t.Oflag = 0
	t.Lflag = 0
	t.Cflag = unix.CREAD | unix.CLOCAL

	switch cfg.DataBits {
	case 5:
		t.Cflag |= unix.CS5
	case 6:
		t.Cflag |= unix.CS6
	case 7:
		t.Cflag |= unix.CS7
	default:
		t.Cflag |= unix.CS8
	}
	if cfg.StopBits == 2 {
		t.Cflag |= unix.CSTOPB
	}
	switch cfg.Parity {
	case ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		t.Cflag |= unix.PARENB
	}

	baud, err := baudConstant(cfg.BaudRate)
	if err != nil {
		return err
	}
	t.Cflag = (t.Cflag &^ unix.CBAUD) | baud
	t.Ispeed = baud
	t.Ospeed = baud

	// No flow control of any kind, per spec §4.1.
	t.Cflag &^= unix.CRTSCTS
	t.Iflag &^= unix.IXON | unix.IXOFF

	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = uint8(cfg.ReadTimeout / (100 * time.Millisecond))

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("%w: set termios: %v", ErrPortIO, err)
	}
	return nil
}
