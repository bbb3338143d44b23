package battery

import (
	"sync"
)

const (
	simDrainPerRead  = 0.004 // fraction per poll
	simChargePerRead = 0.009
	simPlugInLevel   = 0.05
	simUnplugLevel   = 1.0
)

// SimulatedSource is a deterministic battery stand-in: it drains to 5%,
// "plugs in", charges back to full and unplugs again. Charge-state flips are
// pushed on the Changes channel so the monitor exercises its push path.
type SimulatedSource struct {
	mu       sync.Mutex
	level    float64
	charging bool
	changes  chan struct{}
}

func NewSimulatedSource(startLevel float64) *SimulatedSource {
	return &SimulatedSource{
		level:   clampFraction(startLevel),
		changes: make(chan struct{}, 1),
	}
}

func (s *SimulatedSource) Read() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.charging {
		s.level += simChargePerRead
		if s.level >= simUnplugLevel {
			s.level = simUnplugLevel
			s.charging = false
			s.notify()
		}
	} else {
		s.level -= simDrainPerRead
		if s.level <= simPlugInLevel {
			s.level = simPlugInLevel
			s.charging = true
			s.notify()
		}
	}

	// Firmware time estimates are deliberately absent so the derived
	// estimate path gets exercised.
	return Status{
		Level:    s.level,
		Charging: s.charging,
	}, nil
}

func (s *SimulatedSource) Changes() <-chan struct{} {
	return s.changes
}

func (s *SimulatedSource) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
