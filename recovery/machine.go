package recovery

import (
	"sync"
	"time"

	"github.com/allbin/ciscoreset/logging"
)

// Sink receives state-transition telemetry (spec §3/§9).
type Sink interface {
	RecordStateTransition(from, to string, at time.Time)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) RecordStateTransition(string, string, time.Time) {}

// TransitionRecord is one entry in a Machine's append-only history.
type TransitionRecord struct {
	From   State
	To     State
	Reason string
	Data   map[string]any
	At     time.Time
}

// Checkpoint is a saved state plus the config-register/backup values
// in effect at the time, restorable via Machine.Rollback.
type Checkpoint struct {
	State          State
	At             time.Time
	Data           map[string]any
	ConfigRegister string
	ConfigBackup   string
}

// Machine is a single-writer state machine over the fixed transition
// table in state.go. History is append-only and safe to read
// concurrently with further transitions.
type Machine struct {
	sink Sink
	log  logging.Logger

	mu                     sync.Mutex
	current                State
	history                []TransitionRecord
	checkpoints            []Checkpoint
	originalConfigRegister string
	configBackup           string
}

// NewMachine returns a Machine starting in Initial. sink and log
// default to no-ops when nil.
func NewMachine(sink Sink, log logging.Logger) *Machine {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Machine{sink: sink, log: log, current: Initial}
}

// Transition moves to newState if the table allows it from the
// current state, appending a history record. An illegal attempt is
// logged but not added to history, and the state is left unchanged.
// Returns false
// (not an error) for an illegal transition, per spec §7 ("C5 treats
// illegal transitions as non-fatal boolean returns").
func (m *Machine) Transition(newState State, reason string, data map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isValidTransition(m.current, newState) {
		m.log.Error("invalid state transition", logging.F("from", m.current.String()), logging.F("to", newState.String()))
		return false
	}

	old := m.current
	m.current = newState
	m.history = append(m.history, TransitionRecord{From: old, To: newState, Reason: reason, Data: data, At: time.Now()})
	m.log.Info("state transition", logging.F("from", old.String()), logging.F("to", newState.String()), logging.F("reason", reason))
	m.sink.RecordStateTransition(old.String(), newState.String(), time.Now())
	return true
}

// EnterErrorState transitions to ErrorState, folding err's Kind (when
// it is a *Error) into the transition's data.
func (m *Machine) EnterErrorState(err error, reason string) bool {
	data := map[string]any{"error": err.Error()}
	if rerr, ok := err.(*Error); ok {
		data["kind"] = rerr.Kind.String()
	}
	if reason != "" {
		reason = reason + ": " + err.Error()
	} else {
		reason = err.Error()
	}
	return m.Transition(ErrorState, reason, data)
}

// CreateCheckpoint snapshots the current state plus config-register/
// backup values for later Rollback.
func (m *Machine) CreateCheckpoint(data map[string]any) Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := Checkpoint{
		State:          m.current,
		At:             time.Now(),
		Data:           data,
		ConfigRegister: m.originalConfigRegister,
		ConfigBackup:   m.configBackup,
	}
	m.checkpoints = append(m.checkpoints, cp)
	m.log.Debug("checkpoint created", logging.F("state", m.current.String()))
	return cp
}

// RestoreCheckpoint restores cp, or the most recent checkpoint when
// cp is nil. Returns false if there is nothing to restore.
func (m *Machine) RestoreCheckpoint(cp *Checkpoint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cp == nil {
		if len(m.checkpoints) == 0 {
			return false
		}
		last := m.checkpoints[len(m.checkpoints)-1]
		cp = &last
	}

	m.current = cp.State
	m.originalConfigRegister = cp.ConfigRegister
	m.configBackup = cp.ConfigBackup
	m.log.Info("restored checkpoint", logging.F("state", cp.State.String()))
	return true
}

// CanRollback reports whether a checkpoint exists to roll back to.
func (m *Machine) CanRollback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.checkpoints) > 0
}

// Rollback transitions to Rollback and restores the last checkpoint.
func (m *Machine) Rollback() bool {
	if !m.CanRollback() {
		m.log.Warn("no checkpoint available for rollback")
		return false
	}
	if !m.Transition(Rollback, "rolling back to checkpoint", nil) {
		return false
	}
	return m.RestoreCheckpoint(nil)
}

// CurrentState returns the machine's current state.
func (m *Machine) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsTerminalState reports whether the machine has reached Complete or
// ErrorState — mirroring the reference implementation, which treats
// ErrorState as terminal for this check even though the transition
// table still permits leaving it via Rollback/Initial.
func (m *Machine) IsTerminalState() bool {
	s := m.CurrentState()
	return s == Complete || s == ErrorState
}

// History returns a copy of the transition history.
func (m *Machine) History() []TransitionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TransitionRecord, len(m.history))
	copy(out, m.history)
	return out
}

// SetOriginalConfigRegister stores the config-register value observed
// before recovery began, for later restoration.
func (m *Machine) SetOriginalConfigRegister(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.originalConfigRegister = value
	m.log.Debug("stored original config register", logging.F("value", value))
}

// OriginalConfigRegister returns the stored config-register value, or
// "" if none has been set.
func (m *Machine) OriginalConfigRegister() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.originalConfigRegister
}

// SetConfigBackup stores the configuration backup text captured before
// password reset (the CLI passes the router's startup-config).
func (m *Machine) SetConfigBackup(backup string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configBackup = backup
	m.log.Debug("stored configuration backup")
}

// ConfigBackup returns the stored config backup, or "" if none.
func (m *Machine) ConfigBackup() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configBackup
}

// TimeInState sums the wall-clock time spent in state across the
// entire history, including any ongoing span if the machine is
// currently in state.
func (m *Machine) TimeInState(state State) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total time.Duration
	var entry time.Time
	var inState bool

	for _, t := range m.history {
		if t.To == state {
			entry = t.At
			inState = true
		} else if inState && t.From == state {
			total += t.At.Sub(entry)
			inState = false
		}
	}
	if inState && m.current == state {
		total += time.Since(entry)
	}
	return total
}
