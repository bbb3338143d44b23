package config

import (
	"os"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval    = 5
	defaultCapacityMAH = 3000
	defaultHistorySize = 60
	defaultRateWindow  = 10
	defaultChartEvery  = 12
	defaultTelemetryDB = "/var/lib/battwatch/telemetry.db"
)

type Config struct {
	Interval      int    `mapstructure:"interval"`
	CapacityMAH   int    `mapstructure:"capacity_mah"`
	HistorySize   int    `mapstructure:"history_size"`
	RateWindow    int    `mapstructure:"rate_window"`
	Notifications bool   `mapstructure:"notifications"`
	WakeLock      bool   `mapstructure:"wake_lock"`
	Simulate      bool   `mapstructure:"simulate"`
	LogLevel      string `mapstructure:"log_level"`
	Telemetry     bool   `mapstructure:"telemetry"`
	TelemetryDB   string `mapstructure:"telemetry_db"`
	ChartPath     string `mapstructure:"chart_path"`
	ChartEvery    int    `mapstructure:"chart_every"`
}

// Load reads configuration from flags, the config file and defaults, in that
// order of precedence. The config file is /etc/battwatch.toml unless
// BATTWATCH_CONFIG points elsewhere.
func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("battwatch", pflag.ContinueOnError)
	flags.Int("interval", defaultInterval, "Seconds between battery polls")
	flags.Int("capacity", defaultCapacityMAH, "Estimated battery capacity in mAh")
	flags.Int("history", defaultHistorySize, "Number of samples kept in the history buffer")
	flags.Bool("notifications", false, "Enable desktop notifications for battery alerts")
	flags.Bool("wake-lock", false, "Hold a logind idle inhibitor while monitoring")
	flags.Bool("simulate", false, "Use the simulated battery instead of hardware")
	flags.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	flags.Bool("telemetry", false, "Record per-tick snapshots to the telemetry database")
	flags.String("telemetry-db", defaultTelemetryDB, "Path to the telemetry database")
	flags.String("chart", "", "Write a rolling history chart PNG to this path")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("capacity_mah", defaultCapacityMAH)
	v.SetDefault("history_size", defaultHistorySize)
	v.SetDefault("rate_window", defaultRateWindow)
	v.SetDefault("notifications", false)
	v.SetDefault("wake_lock", false)
	v.SetDefault("simulate", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("telemetry_db", defaultTelemetryDB)
	v.SetDefault("chart_path", "")
	v.SetDefault("chart_every", defaultChartEvery)

	bindings := map[string]string{
		"interval":      "interval",
		"capacity_mah":  "capacity",
		"history_size":  "history",
		"notifications": "notifications",
		"wake_lock":     "wake-lock",
		"simulate":      "simulate",
		"log_level":     "log-level",
		"telemetry":     "telemetry",
		"telemetry_db":  "telemetry-db",
		"chart_path":    "chart",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	if path := os.Getenv("BATTWATCH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("battwatch")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges that the rest of the daemon relies on.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.CapacityMAH <= 0 {
		return errFactory.WithData(errors.ErrInvalidCapacity, c.CapacityMAH)
	}
	if c.HistorySize <= 0 || c.RateWindow <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			HistorySize int
			RateWindow  int
		}{c.HistorySize, c.RateWindow})
	}
	if c.ChartPath != "" && c.ChartEvery <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, c.ChartEvery)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
