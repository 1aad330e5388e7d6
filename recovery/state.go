// Package recovery tracks the recovery procedure's progress through a
// fixed state machine, with checkpoint/rollback support (spec §4.5).
package recovery

// State is one stage of the password-recovery procedure.
type State int

const (
	Initial State = iota
	Connected
	WaitingBoot
	SendingBreak
	RomMonitor
	ConfigRegSet
	Rebooting
	IosNoConfig
	SystemDetection
	PasswordReset
	ConfigSaved
	Complete
	ErrorState
	Rollback
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Connected:
		return "connected"
	case WaitingBoot:
		return "waiting_boot"
	case SendingBreak:
		return "sending_break"
	case RomMonitor:
		return "rom_monitor"
	case ConfigRegSet:
		return "config_reg_set"
	case Rebooting:
		return "rebooting"
	case IosNoConfig:
		return "ios_no_config"
	case SystemDetection:
		return "system_detection"
	case PasswordReset:
		return "password_reset"
	case ConfigSaved:
		return "config_saved"
	case Complete:
		return "complete"
	case ErrorState:
		return "error"
	case Rollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// validTransitions is the fixed table from spec §4.5. A target state
// not present in a source's slice is rejected.
var validTransitions = map[State][]State{
	Initial:         {Connected, ErrorState},
	Connected:       {WaitingBoot, ErrorState},
	WaitingBoot:     {SendingBreak, ErrorState},
	SendingBreak:    {RomMonitor, SendingBreak, ErrorState},
	RomMonitor:      {ConfigRegSet, ErrorState},
	ConfigRegSet:    {Rebooting, ErrorState},
	Rebooting:       {IosNoConfig, ErrorState},
	IosNoConfig:     {SystemDetection, PasswordReset, ErrorState},
	SystemDetection: {PasswordReset, ErrorState},
	PasswordReset:   {ConfigSaved, ErrorState},
	ConfigSaved:     {Complete, ErrorState},
	ErrorState:      {Rollback, Initial},
	Rollback:        {Initial, ErrorState},
	Complete:        {},
}

func isValidTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
