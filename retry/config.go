package retry

import "time"

// Config parameterizes a single retry policy invocation.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Strategy   Strategy
}

// DefaultConfig is used for any operation class not present in
// DefaultConfigs.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 60 * time.Second, Strategy: ExponentialBackoff}
}

// DefaultConfigs holds the per-operation-class defaults from spec §4.3.
var DefaultConfigs = map[string]Config{
	"break_sequence": {
		MaxRetries: 5,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Strategy:   ExponentialBackoff,
	},
	"rommon_entry": {
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Strategy:   ExponentialBackoff,
	},
	"command_execution": {
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Strategy:   ExponentialBackoff,
	},
	"config_save": {
		MaxRetries: 5,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Strategy:   ExponentialBackoff,
	},
}

// ConfigFor returns the named operation class's default config, or the
// generic fallback config if the class is unknown.
func ConfigFor(operation string) Config {
	if cfg, ok := DefaultConfigs[operation]; ok {
		return cfg
	}
	return DefaultConfig()
}
