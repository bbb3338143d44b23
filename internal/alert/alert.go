// Package alert detects battery threshold crossings and emits one event per
// crossing.
package alert

import "fmt"

const (
	lowThreshold      = 20
	criticalThreshold = 10
	chargedThreshold  = 80
)

type Kind int

const (
	LowBattery Kind = iota
	CriticalBattery
	ChargedEnough
)

func (k Kind) String() string {
	switch k {
	case LowBattery:
		return "low_battery"
	case CriticalBattery:
		return "critical_battery"
	case ChargedEnough:
		return "charged_enough"
	default:
		return "unknown"
	}
}

// Event is an emitted alert. Delivery is fire-and-forget; the engine neither
// retries nor tracks whether anyone handled it.
type Event struct {
	Kind  Kind
	Level int
}

// Title returns the notification title for the event.
func (e Event) Title() string {
	switch e.Kind {
	case LowBattery:
		return "Battery low"
	case CriticalBattery:
		return "Battery critically low"
	case ChargedEnough:
		return "Battery charged"
	default:
		return "Battery"
	}
}

// Body returns the notification body for the event.
func (e Event) Body() string {
	switch e.Kind {
	case LowBattery:
		return fmt.Sprintf("Battery is at %d%%. Consider plugging in.", e.Level)
	case CriticalBattery:
		return fmt.Sprintf("Battery is at %d%%. Plug in now.", e.Level)
	case ChargedEnough:
		return fmt.Sprintf("Battery reached %d%%. You can unplug.", e.Level)
	default:
		return fmt.Sprintf("Battery is at %d%%.", e.Level)
	}
}

// Engine edge-triggers alerts on threshold crossings. Each kind fires at
// most once per crossing; re-firing requires the level to move back across
// the threshold first. The last seen level is tracked on every evaluation
// whether or not emission is enabled, so toggling notifications on mid-run
// never replays a crossing that already happened.
type Engine struct {
	lastNotifiedLevel int
	enabled           bool
}

func NewEngine(enabled bool) *Engine {
	return &Engine{
		lastNotifiedLevel: 100,
		enabled:           enabled,
	}
}

func (e *Engine) SetEnabled(enabled bool) {
	e.enabled = enabled
}

func (e *Engine) Enabled() bool {
	return e.enabled
}

// Evaluate inspects one level reading (0-100). At most one event is emitted
// per call, the first matching crossing in severity order.
func (e *Engine) Evaluate(level int, charging bool) (Event, bool) {
	last := e.lastNotifiedLevel
	e.lastNotifiedLevel = level

	if !e.enabled {
		return Event{}, false
	}

	switch {
	case level <= lowThreshold && last > lowThreshold:
		return Event{Kind: LowBattery, Level: level}, true
	case level <= criticalThreshold && last > criticalThreshold:
		return Event{Kind: CriticalBattery, Level: level}, true
	case level >= chargedThreshold && charging && last < chargedThreshold:
		return Event{Kind: ChargedEnough, Level: level}, true
	}

	return Event{}, false
}
