package metrics

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/allbin/ciscoreset/transport"
)

func TestRecordOperationAggregates(t *testing.T) {
	c := NewCollector()
	c.RecordOperation("command_execution", 100*time.Millisecond, true)
	c.RecordOperation("command_execution", 300*time.Millisecond, false)
	c.RecordOperation("command_execution", 200*time.Millisecond, true)

	snap := c.Snapshot()
	stat := snap.Operations["command_execution"]

	if stat.Count != 3 {
		t.Errorf("Count = %d, want 3", stat.Count)
	}
	if stat.Min != 100*time.Millisecond {
		t.Errorf("Min = %v, want 100ms", stat.Min)
	}
	if stat.Max != 300*time.Millisecond {
		t.Errorf("Max = %v, want 300ms", stat.Max)
	}
	if stat.Success != 2 || stat.Failure != 1 {
		t.Errorf("Success/Failure = %d/%d, want 2/1", stat.Success, stat.Failure)
	}
	if stat.Avg() != 200*time.Millisecond {
		t.Errorf("Avg() = %v, want 200ms", stat.Avg())
	}
}

func TestRecordStateTransitionRingBufferCaps(t *testing.T) {
	c := NewCollector()
	for i := 0; i < transitionRingSize+10; i++ {
		c.RecordStateTransition("A", "B", time.Now())
	}
	snap := c.Snapshot()
	if len(snap.Transitions) != transitionRingSize {
		t.Errorf("len(Transitions) = %d, want %d", len(snap.Transitions), transitionRingSize)
	}
}

func TestRecordBreakAttemptAndBytes(t *testing.T) {
	c := NewCollector()
	c.RecordBreakAttempt(transport.BreakAttempt{Method: transport.BreakStandard, Success: true})
	c.RecordBreakAttempt(transport.BreakAttempt{Method: transport.BreakExtended, Success: false})
	c.RecordBytes(10, 20)
	c.RecordBytes(5, 0)

	snap := c.Snapshot()
	if len(snap.BreakAttempts) != 2 {
		t.Errorf("len(BreakAttempts) = %d, want 2", len(snap.BreakAttempts))
	}
	if snap.BytesSent != 15 || snap.BytesReceived != 20 {
		t.Errorf("BytesSent/BytesReceived = %d/%d, want 15/20", snap.BytesSent, snap.BytesReceived)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.RecordBreakAttempt(transport.BreakAttempt{Method: transport.BreakStandard})

	snap := c.Snapshot()
	snap.BreakAttempts[0].Success = true

	again := c.Snapshot()
	if again.BreakAttempts[0].Success {
		t.Error("mutating a Snapshot() result mutated the collector's internal state")
	}
}

func TestConnectionUptimeTracksStart(t *testing.T) {
	c := NewCollector()
	c.StartConnection()
	time.Sleep(10 * time.Millisecond)

	snap := c.Snapshot()
	if snap.ConnectionUptime <= 0 {
		t.Errorf("ConnectionUptime = %v, want > 0", snap.ConnectionUptime)
	}
}

func TestNoopSatisfiesSinkInterfaces(t *testing.T) {
	var n Noop
	n.RecordOperation("op", time.Second, true)
	n.RecordRetry("op")
	n.RecordBytes(1, 1)
	n.RecordTimeout()
	n.RecordBreakAttempt(transport.BreakAttempt{})
	n.RecordStateTransition("A", "B", time.Now())
	n.RecordRommonEntry(time.Now())
	n.RecordBootDuration(time.Second)
	n.StartConnection()
	if got := n.Snapshot(); len(got.Operations) != 0 {
		t.Errorf("Noop.Snapshot() = %+v, want zero value", got)
	}
}

func TestSnapshotToJSON(t *testing.T) {
	c := NewCollector()
	c.RecordOperation("rommon_entry", time.Second, true)
	c.RecordRetry("rommon_entry")

	data, err := c.Snapshot().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if _, ok := decoded["operations"]; !ok {
		t.Error("ToJSON() output missing \"operations\" key")
	}
}

func TestWriteJSONFile(t *testing.T) {
	c := NewCollector()
	c.RecordBytes(42, 0)
	path := filepath.Join(t.TempDir(), "metrics_20260731_120000.json")

	if err := c.Snapshot().WriteJSONFile(path); err != nil {
		t.Fatalf("WriteJSONFile() error = %v", err)
	}
}
