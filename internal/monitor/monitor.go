// Package monitor drives the battery sampling pipeline on a fixed period.
package monitor

import (
	"context"
	"math"
	"time"

	"codeberg.org/waldrek/battwatch/internal/alert"
	"codeberg.org/waldrek/battwatch/internal/battery"
	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/history"
	"codeberg.org/waldrek/battwatch/internal/logger"
	"codeberg.org/waldrek/battwatch/internal/notify"
	"codeberg.org/waldrek/battwatch/internal/rate"
	"codeberg.org/waldrek/battwatch/internal/telemetry"
)

const (
	defaultInterval    = 5 * time.Second
	defaultHistorySize = 60
	defaultRateWindow  = 10
	defaultCapacityMAH = 3000
)

// Snapshot is the read-only per-tick state handed to presenters.
type Snapshot struct {
	Timestamp          time.Time
	Level              int
	Charging           bool
	Status             string
	AverageRateMA      float64
	RateKnown          bool
	TimeRemaining      time.Duration
	TimeRemainingKnown bool
	Alert              *alert.Event
	History            []battery.Sample
}

// Presenter consumes snapshots. Presenters must not block; rendering
// happens inside the tick.
type Presenter interface {
	Present(Snapshot)
}

type Config struct {
	Interval      time.Duration
	HistorySize   int
	RateWindow    int
	CapacityMAH   float64
	Notifications bool
}

// Monitor owns the history buffer, estimator and alert engine, and runs
// them once per tick. All state is touched only from the tick path, so no
// locking is needed.
type Monitor struct {
	cfg        Config
	source     battery.Source
	presenters []Presenter
	sink       notify.Sink
	collector  telemetry.Collector

	hist      *history.Buffer
	estimator *rate.Estimator
	engine    *alert.Engine

	now func() time.Time
}

// New wires a monitor from its collaborators. The source is required; a nil
// sink or collector falls back to a no-op.
func New(cfg Config, source battery.Source, presenters []Presenter, sink notify.Sink, collector telemetry.Collector) (*Monitor, error) {
	errFactory := errors.New()

	if source == nil {
		return nil, errFactory.WithMessage(errors.ErrInitApp, "monitor requires a battery source")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = defaultRateWindow
	}
	if cfg.CapacityMAH <= 0 {
		cfg.CapacityMAH = defaultCapacityMAH
	}
	if sink == nil {
		sink = notify.Noop()
	}
	if collector == nil {
		noop, err := telemetry.NewService(telemetry.Config{})
		if err != nil {
			return nil, err
		}
		collector = noop
	}

	return &Monitor{
		cfg:        cfg,
		source:     source,
		presenters: presenters,
		sink:       sink,
		collector:  collector,
		hist:       history.New(cfg.HistorySize),
		estimator:  rate.NewEstimator(cfg.CapacityMAH, cfg.RateWindow),
		engine:     alert.NewEngine(cfg.Notifications),
		now:        time.Now,
	}, nil
}

// Run ticks until the context is cancelled. Sources that implement
// battery.Watcher additionally trigger a tick on every pushed change; the
// ticker remains the refresh fallback either way.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	var changes <-chan struct{}
	if w, ok := m.source.(battery.Watcher); ok {
		changes = w.Changes()
		logger.Debug().Msg("Battery source supports change events")
	}

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.tick(ctx)
		case <-changes:
			m.tick(ctx)
		}
	}
}

// SetNotifications toggles alert emission at runtime. Level tracking is
// unaffected, so enabling never replays an old crossing.
func (m *Monitor) SetNotifications(enabled bool) {
	m.engine.SetEnabled(enabled)
}

// History returns a copy of the current history buffer for on-demand
// charting.
func (m *Monitor) History() []battery.Sample {
	return m.hist.Snapshot()
}

// tick runs one monitoring step. A failed read skips the whole tick with
// state unchanged; the next tick is the retry.
func (m *Monitor) tick(ctx context.Context) {
	st, err := m.source.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Battery read failed, skipping tick")
		return
	}

	now := m.now()
	sample := battery.Sample{
		Timestamp: now,
		Level:     st.Level * 100,
		Charging:  st.Charging,
	}
	m.hist.Record(sample)
	m.estimator.Observe(m.hist, st.Charging)

	level := int(math.Round(sample.Level))
	var fired *alert.Event
	if ev, ok := m.engine.Evaluate(level, st.Charging); ok {
		fired = &ev
		// Fire-and-forget: the sink may drop it and we do not care.
		if err := m.sink.Notify(ev.Title(), ev.Body()); err != nil {
			logger.Debug().Err(err).Str("alert", ev.Kind.String()).Msg("Notification dropped")
		}
	}

	snap := m.buildSnapshot(now, st, level, fired)
	for _, p := range m.presenters {
		p.Present(snap)
	}

	if err := m.collector.Record(ctx, telemetrySnapshot(snap)); err != nil {
		logger.Warn().Err(err).Msg("Failed to record telemetry snapshot")
	}
}

func (m *Monitor) buildSnapshot(now time.Time, st battery.Status, level int, fired *alert.Event) Snapshot {
	snap := Snapshot{
		Timestamp: now,
		Level:     level,
		Charging:  st.Charging,
		Status:    st.Text(),
		Alert:     fired,
		History:   m.hist.Snapshot(),
	}

	if avg := m.estimator.Average(); avg > 0 {
		snap.AverageRateMA = avg
		snap.RateKnown = true
	}

	// Prefer the firmware estimate, fall back to the derived one.
	switch {
	case st.Charging && st.ChargingTimeKnown:
		snap.TimeRemaining = st.ChargingTime
		snap.TimeRemainingKnown = true
	case !st.Charging && st.DischargingTimeKnown:
		snap.TimeRemaining = st.DischargingTime
		snap.TimeRemainingKnown = true
	case !st.Charging:
		if remaining, ok := m.estimator.TimeRemaining(st.Level * 100); ok {
			snap.TimeRemaining = remaining
			snap.TimeRemainingKnown = true
		}
	}

	return snap
}

func telemetrySnapshot(snap Snapshot) *telemetry.Snapshot {
	ts := &telemetry.Snapshot{
		Timestamp:         snap.Timestamp,
		Level:             snap.Level,
		Charging:          snap.Charging,
		AverageRateMA:     snap.AverageRateMA,
		TimeRemainingSecs: -1,
	}
	if snap.TimeRemainingKnown {
		ts.TimeRemainingSecs = int64(snap.TimeRemaining.Seconds())
	}
	if snap.Alert != nil {
		ts.Alert = snap.Alert.Kind.String()
	}
	return ts
}
