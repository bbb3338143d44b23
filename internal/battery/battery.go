// Package battery provides battery state sources and the sample type shared
// by the monitoring pipeline.
package battery

import "time"

// Sample is one battery reading. Immutable once created.
type Sample struct {
	Timestamp time.Time
	Level     float64 // percent, 0-100
	Charging  bool
}

// Status is the raw reading a Source produces.
type Status struct {
	Level                float64 // fraction, 0-1
	Charging             bool
	ChargingTime         time.Duration
	ChargingTimeKnown    bool
	DischargingTime      time.Duration
	DischargingTimeKnown bool
}

// Text returns the human-readable charging state for presentation.
func (s Status) Text() string {
	switch {
	case s.Charging && s.Level >= 0.995:
		return "Fully charged"
	case s.Charging:
		return "Charging"
	default:
		return "Discharging"
	}
}

// Source provides periodic battery readings.
type Source interface {
	Read() (Status, error)
}

// Watcher is optionally implemented by sources that can push change events
// in addition to being polled. Events carry no payload; receivers re-read.
type Watcher interface {
	Changes() <-chan struct{}
}
