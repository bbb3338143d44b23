package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/waldrek/battwatch/internal/config"
	"codeberg.org/waldrek/battwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetArgs strips test-runner flags so Load only sees its own flag set.
func resetArgs(t *testing.T) {
	t.Helper()
	oldArgs := os.Args
	os.Args = []string{"battwatch"}
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestLoad(t *testing.T) {
	resetArgs(t)

	tempDir := t.TempDir()
	configContent := []byte(`
interval = 10
capacity_mah = 4200
history_size = 120
notifications = true
wake_lock = true
log_level = "debug"
telemetry = true
telemetry_db = "/path/to/telemetry.db"
chart_path = "/tmp/battwatch.png"
`)
	configPath := filepath.Join(tempDir, "battwatch.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BATTWATCH_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Interval, "Expected Interval 10")
	assert.Equal(t, 4200, cfg.CapacityMAH, "Expected CapacityMAH 4200")
	assert.Equal(t, 120, cfg.HistorySize, "Expected HistorySize 120")
	assert.True(t, cfg.Notifications, "Expected Notifications true")
	assert.True(t, cfg.WakeLock, "Expected WakeLock true")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB)
	assert.Equal(t, "/tmp/battwatch.png", cfg.ChartPath)
}

func TestLoadDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("BATTWATCH_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 5, cfg.Interval, "Expected default Interval 5")
	assert.Equal(t, 3000, cfg.CapacityMAH, "Expected default CapacityMAH 3000")
	assert.Equal(t, 60, cfg.HistorySize, "Expected default HistorySize 60")
	assert.Equal(t, 10, cfg.RateWindow, "Expected default RateWindow 10")
	assert.False(t, cfg.Notifications, "Expected default Notifications false")
	assert.False(t, cfg.WakeLock, "Expected default WakeLock false")
	assert.False(t, cfg.Simulate, "Expected default Simulate false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, 12, cfg.ChartEvery, "Expected default ChartEvery 12")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	resetArgs(t)

	tempDir := t.TempDir()
	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "battwatch.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BATTWATCH_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrReadConfig, appErr.Code())
}

func TestInvalidLogLevel(t *testing.T) {
	resetArgs(t)

	tempDir := t.TempDir()
	configContent := []byte(`
log_level = "loud"
`)
	configPath := filepath.Join(tempDir, "battwatch.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("BATTWATCH_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrInvalidLogLevel, appErr.Code())
}

func TestInvalidInterval(t *testing.T) {
	resetArgs(t)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "battwatch.toml")
	err := os.WriteFile(configPath, []byte("interval = 0\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("BATTWATCH_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrInvalidInterval, appErr.Code())
}

func TestLogLevelFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"battwatch", "--log-level", "debug"}

	t.Setenv("BATTWATCH_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}
