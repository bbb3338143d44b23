package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/waldrek/battwatch/internal/battery"
	"codeberg.org/waldrek/battwatch/internal/chart"
	"codeberg.org/waldrek/battwatch/internal/config"
	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
	"codeberg.org/waldrek/battwatch/internal/monitor"
	"codeberg.org/waldrek/battwatch/internal/notify"
	"codeberg.org/waldrek/battwatch/internal/pid"
	"codeberg.org/waldrek/battwatch/internal/telemetry"
	"codeberg.org/waldrek/battwatch/internal/wakelock"
)

const simulateStartLevel = 1.0

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) && appErr.Code() == errors.ErrAlreadyRunning {
			logger.Fatal().Str("pid_file", pid.Path()).Msg("Another instance is already running")
		}
		logger.Fatal().Err(err).Msg("Failed to write PID file")
	}
	defer removePIDFile()

	source := newSource()
	sink := newSink()
	collector := newCollector()
	defer closeCollector(collector)

	mon, err := monitor.New(monitor.Config{
		Interval:      time.Duration(cfg.Interval) * time.Second,
		HistorySize:   cfg.HistorySize,
		RateWindow:    cfg.RateWindow,
		CapacityMAH:   float64(cfg.CapacityMAH),
		Notifications: cfg.Notifications,
	}, source, newPresenters(), sink, collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize monitor")
	}

	lock := wakelock.New()
	if cfg.WakeLock {
		if err := lock.Acquire("battery monitoring in progress"); err != nil {
			logger.Warn().Err(err).Msg("Continuing without wake lock")
		}
	}
	defer lock.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	logger.Info().
		Int("interval", cfg.Interval).
		Int("capacity_mah", cfg.CapacityMAH).
		Bool("simulate", cfg.Simulate).
		Bool("notifications", cfg.Notifications).
		Msg("Monitoring battery...")

	if err := mon.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
	}

	logger.Info().Msg("Exiting...")
}

func newSource() battery.Source {
	if cfg.Simulate {
		logger.Info().Msg("Using simulated battery")
		return battery.NewSimulatedSource(simulateStartLevel)
	}

	source, err := battery.NewHardwareSource()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize battery source")
	}

	return source
}

// newSink connects to the session bus. Without one, notifications silently
// degrade to a no-op; everything else keeps working.
func newSink() notify.Sink {
	sink, err := notify.NewSink()
	if err != nil {
		logger.Warn().Err(err).Msg("Session bus unavailable, notifications disabled")
		return notify.Noop()
	}

	return sink
}

func newCollector() telemetry.Collector {
	tcfg := telemetry.DefaultConfig()
	tcfg.Enabled = cfg.Telemetry
	tcfg.DBPath = cfg.TelemetryDB

	collector, err := telemetry.NewService(tcfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry unavailable, continuing without it")
		collector, _ = telemetry.NewService(telemetry.Config{})
	}

	return collector
}

func newPresenters() []monitor.Presenter {
	presenters := []monitor.Presenter{consolePresenter{}}
	if cfg.ChartPath != "" {
		presenters = append(presenters, chart.NewRenderer(cfg.ChartPath, cfg.ChartEvery))
	}

	return presenters
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func removePIDFile() {
	if err := pid.Remove(); err != nil {
		logger.Error().Err(err).Msg("Failed to remove PID file")
	}
}

func closeCollector(collector telemetry.Collector) {
	if err := collector.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close telemetry collector")
	}
}

// consolePresenter logs every snapshot as structured fields.
type consolePresenter struct{}

func (consolePresenter) Present(snap monitor.Snapshot) {
	cosmetics := battery.ReadCosmetics(float64(snap.Level)/100, snap.Charging)

	event := logger.Info()
	event.Int("level", snap.Level).
		Str("status", snap.Status).
		Str("remaining", formatRemaining(snap)).
		Float64("health_pct", cosmetics.HealthPercent).
		Float64("temperature_c", cosmetics.TemperatureC).
		Float64("voltage", cosmetics.Voltage)
	if snap.RateKnown {
		event.Float64("rate_ma", snap.AverageRateMA)
	}
	if snap.Alert != nil {
		event.Str("alert", snap.Alert.Kind.String())
	}
	event.Msg("")
}

func formatRemaining(snap monitor.Snapshot) string {
	if !snap.TimeRemainingKnown {
		return "unknown"
	}

	remaining := snap.TimeRemaining.Round(time.Minute)
	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60

	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
