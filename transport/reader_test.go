package transport

import (
	"testing"
	"time"

	"github.com/allbin/ciscoreset/transport/internal/faketty"
)

func TestReaderAccumulatesAcrossWrites(t *testing.T) {
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

	pair.Master.Write([]byte("Router con0 is now available\r\n"))
	time.Sleep(50 * time.Millisecond)
	pair.Master.Write([]byte("\r\nPress RETURN to get started.\r\n"))
	time.Sleep(150 * time.Millisecond)

	buf := p.GetOutputBuffer()
	if buf == "" {
		t.Fatal("GetOutputBuffer() = empty after two writes")
	}
}

func TestReadOutputEmptyWithoutTimeout(t *testing.T) {
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

	if out := p.ReadOutput(0); out != "" {
		t.Errorf("ReadOutput(0) on an idle port = %q, want empty", out)
	}
}

func TestReaderStopsWithinBudgetOnClose(t *testing.T) {
	pair, err := faketty.New()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer pair.Close()

	p := New(&recordingSink{}, nil)
	if err := p.Open(pair.SlavePath()); err != nil {
		t.Fatalf("Open error = %v", err)
	}

	start := time.Now()
	if err := p.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Close took %v, want well under the 2s reader-stop budget", elapsed)
	}
}
