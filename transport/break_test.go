package transport

import (
	"testing"

	"github.com/allbin/ciscoreset/transport/internal/faketty"
)

func TestBreakMethodString(t *testing.T) {
	tests := []struct {
		method BreakMethod
		want   string
	}{
		{BreakStandard, "standard"},
		{BreakExtended, "extended"},
		{BreakMultiple, "multiple"},
		{BreakIoctl, "ioctl"},
		{BreakSignalToggle, "signal_toggle"},
		{BreakMethod(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.method), got, tt.want)
		}
	}
}

func TestSendBreakOnClosedPortFails(t *testing.T) {
	p := New(&recordingSink{}, nil)
	if p.SendBreak(nil) {
		t.Error("SendBreak on an unopened port succeeded, want false")
	}
}

func TestSendBreakRecordsEveryAttempt(t *testing.T) {
	pair, err := faketty.New()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer pair.Close()

	sink := &recordingSink{}
	p := New(sink, nil)
	if err := p.Open(pair.SlavePath()); err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	method := BreakStandard
	p.SendBreak(&method)

	attempts := p.BreakAttempts()
	if len(attempts) != 1 {
		t.Fatalf("len(BreakAttempts()) = %d, want 1", len(attempts))
	}
	if attempts[0].Method != BreakStandard {
		t.Errorf("attempt method = %v, want BreakStandard", attempts[0].Method)
	}
	if len(sink.breaks) != 1 {
		t.Errorf("sink recorded %d break attempts, want 1", len(sink.breaks))
	}
}

func TestBreakAttemptsReturnsACopy(t *testing.T) {
	pair, err := faketty.New()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer pair.Close()

	p := New(&recordingSink{}, nil)
	if err := p.Open(pair.SlavePath()); err != nil {
		t.Fatalf("Open error = %v", err)
	}
	defer p.Close()

	method := BreakIoctl
	p.SendBreak(&method)

	got := p.BreakAttempts()
	got[0].Success = !got[0].Success

	again := p.BreakAttempts()
	if again[0].Success == got[0].Success {
		t.Error("mutating a BreakAttempts() result mutated internal state")
	}
}
