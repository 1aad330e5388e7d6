// Package retry implements the named backoff strategies and
// per-operation-class retry policies used throughout the recovery
// engine (spec §4.3).
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy names a backoff algorithm.
type Strategy int

const (
	ExponentialBackoff Strategy = iota
	LinearBackoff
	FixedDelay
	Immediate
	Progressive
	AdaptiveBackoff
)

func (s Strategy) String() string {
	switch s {
	case ExponentialBackoff:
		return "exponential_backoff"
	case LinearBackoff:
		return "linear_backoff"
	case FixedDelay:
		return "fixed_delay"
	case Immediate:
		return "immediate"
	case Progressive:
		return "progressive_delay"
	case AdaptiveBackoff:
		return "adaptive_backoff"
	default:
		return "unknown"
	}
}

// calcDelay computes the wait before the given attempt (1-based),
// clamped to cfg.MaxDelay.
func calcDelay(attempt int, cfg Config) time.Duration {
	var delay time.Duration

	switch cfg.Strategy {
	case ExponentialBackoff:
		delay = cfg.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	case LinearBackoff:
		delay = cfg.BaseDelay * time.Duration(attempt)
	case FixedDelay:
		delay = cfg.BaseDelay
	case Immediate:
		delay = 0
	case Progressive:
		d := float64(cfg.BaseDelay) * math.Pow(float64(attempt), 1.5)
		delay = time.Duration(math.Min(d, float64(cfg.MaxDelay)))
	case AdaptiveBackoff:
		base := cfg.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
		jitter := time.Duration(rand.Int64N(int64(cfg.BaseDelay) + 1))
		delay = base + jitter
	default:
		delay = cfg.BaseDelay
	}

	if delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	if delay < 0 {
		return 0
	}
	return delay
}
