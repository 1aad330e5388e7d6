package transport

import (
	"bytes"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// reader drains a Port's fd in the background, decoding bytes as UTF-8
// (with the standard replacement character for invalid sequences) and
// accumulating them into a single buffer. ReadOutput consumes that
// buffer and GetOutputBuffer reads it without consuming it; there is no
// separate queue, so GetOutputBuffer sees only text ReadOutput has not
// yet taken. The idle poll interval is capped at 10ms so stop returns
// promptly (spec §4.1).
type reader struct {
	port *Port

	mu      sync.Mutex
	buf     []byte
	pending []byte // undecoded tail of a split UTF-8 sequence
	cond    *sync.Cond

	done    chan struct{}
	stopped chan struct{}
}

func newReader(p *Port) *reader {
	r := &reader{port: p, done: make(chan struct{}), stopped: make(chan struct{})}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *reader) start() {
	go r.loop()
}

func (r *reader) loop() {
	defer close(r.stopped)

	fd, ok := r.port.fdLocked()
	if !ok {
		return
	}

	chunk := make([]byte, 4096)
	for {
		select {
		case <-r.done:
			return
		default:
		}

		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pfd, 10)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}

		nread, err := unix.Read(fd, chunk)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if nread <= 0 {
			continue
		}

		r.append(chunk[:nread])
		r.port.sink.RecordBytes(0, nread)
	}
}

// append decodes as much of pending+data as forms complete runes,
// appends the result to buf, and wakes anyone blocked in drain. A
// trailing byte sequence that looks like the start of a multi-byte
// rune still awaiting its continuation bytes is held back in pending.
func (r *reader) append(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	combined := append(r.pending, data...)
	r.pending = nil

	complete, pending := splitTrailingIncompleteRune(combined)
	if len(pending) > 0 {
		r.pending = append([]byte{}, pending...)
	}

	r.buf = append(r.buf, bytes.ToValidUTF8(complete, []byte("�"))...)
	r.cond.Broadcast()
}

// splitTrailingIncompleteRune separates b into a leading complete
// portion and a trailing incomplete multi-byte UTF-8 sequence, if any.
func splitTrailingIncompleteRune(b []byte) (complete, pending []byte) {
	if len(b) == 0 {
		return b, nil
	}

	start := len(b) - 1
	for start >= 0 && len(b)-start <= utf8.UTFMax && !utf8.RuneStart(b[start]) {
		start--
	}
	if start < 0 || len(b)-start > utf8.UTFMax {
		return b, nil
	}

	if utf8.FullRune(b[start:]) {
		return b, nil
	}
	return b[:start], b[start:]
}

// drain returns and removes everything accumulated, blocking up to
// timeout for at least one byte to arrive if the buffer is empty.
func (r *reader) drain(timeout time.Duration) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == 0 && timeout > 0 {
		deadline := time.Now().Add(timeout)
		timer := time.AfterFunc(timeout, func() {
			r.mu.Lock()
			r.cond.Broadcast()
			r.mu.Unlock()
		})
		defer timer.Stop()
		for len(r.buf) == 0 && time.Now().Before(deadline) {
			r.cond.Wait()
		}
	}

	out := string(r.buf)
	r.buf = nil
	return out
}

// buffer returns the full accumulated text without consuming it.
func (r *reader) buffer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.buf)
}

// clear empties the accumulated text.
func (r *reader) clear() {
	r.mu.Lock()
	r.buf = nil
	r.mu.Unlock()
}

func (r *reader) stop(timeout time.Duration) {
	close(r.done)
	select {
	case <-r.stopped:
	case <-time.After(timeout):
	}
	r.mu.Lock()
	r.cond.Broadcast()
	r.mu.Unlock()
}
