package metrics

import (
	"encoding/json"
	"os"
)

// jsonOperation mirrors OperationStats with an explicit Avg field,
// since time.Duration division isn't something encoding/json derives.
type jsonOperation struct {
	Count   int   `json:"count"`
	SumNS   int64 `json:"sum_ns"`
	MinNS   int64 `json:"min_ns"`
	MaxNS   int64 `json:"max_ns"`
	AvgNS   int64 `json:"avg_ns"`
	Success int   `json:"success"`
	Failure int   `json:"failure"`
}

type jsonSnapshot struct {
	Operations       map[string]jsonOperation `json:"operations"`
	RetryCounts      map[string]int           `json:"retry_counts"`
	BytesSent        int                      `json:"bytes_sent"`
	BytesReceived    int                      `json:"bytes_received"`
	ConnectionUptime float64                  `json:"connection_uptime_seconds"`
	TimeoutCount     int                      `json:"timeout_count"`
	TransitionCount  int                      `json:"transition_count"`
	BreakAttempts    int                      `json:"break_attempt_count"`
	BootDuration     float64                  `json:"boot_duration_seconds"`
}

// ToJSON renders Snapshot as the export the CLI writes to
// metrics_YYYYMMDD_HHMMSS.json (spec §6).
func (s Snapshot) ToJSON() ([]byte, error) {
	ops := make(map[string]jsonOperation, len(s.Operations))
	for name, stat := range s.Operations {
		ops[name] = jsonOperation{
			Count:   stat.Count,
			SumNS:   stat.Sum.Nanoseconds(),
			MinNS:   stat.Min.Nanoseconds(),
			MaxNS:   stat.Max.Nanoseconds(),
			AvgNS:   stat.Avg().Nanoseconds(),
			Success: stat.Success,
			Failure: stat.Failure,
		}
	}
	js := jsonSnapshot{
		Operations:       ops,
		RetryCounts:      s.RetryCounts,
		BytesSent:        s.BytesSent,
		BytesReceived:    s.BytesReceived,
		ConnectionUptime: s.ConnectionUptime.Seconds(),
		TimeoutCount:     s.TimeoutCount,
		TransitionCount:  len(s.Transitions),
		BreakAttempts:    len(s.BreakAttempts),
		BootDuration:     s.BootDuration.Seconds(),
	}
	return json.MarshalIndent(js, "", "  ")
}

// WriteJSONFile renders and writes Snapshot to path.
func (s Snapshot) WriteJSONFile(path string) error {
	data, err := s.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
