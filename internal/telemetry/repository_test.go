package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/waldrek/battwatch/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) telemetry.Config {
	t.Helper()
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "telemetry.db")
	cfg.BatchSize = 2
	cfg.BatchTimeout = 60
	return cfg
}

func countSnapshots(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))
	return n
}

func TestRecordFlushesOnBatchSize(t *testing.T) {
	cfg := testConfig(t)
	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)

	base := time.Unix(1700000000, 0)
	for i := 0; i < 4; i++ {
		err := collector.Record(context.Background(), &telemetry.Snapshot{
			Timestamp:         base.Add(time.Duration(i) * 5 * time.Second),
			Level:             80 - i,
			Charging:          false,
			AverageRateMA:     310.5,
			TimeRemainingSecs: int64(3600 * (4 - i)),
			Alert:             "",
		})
		require.NoError(t, err)
	}

	require.NoError(t, collector.Close())
	assert.Equal(t, 4, countSnapshots(t, cfg.DBPath))
}

func TestCloseFlushesRemainder(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 100 // never reached

	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)

	err = collector.Record(context.Background(), &telemetry.Snapshot{
		Timestamp:         time.Unix(1700000000, 0),
		Level:             55,
		Charging:          true,
		TimeRemainingSecs: -1,
		Alert:             "charged_enough",
	})
	require.NoError(t, err)

	require.NoError(t, collector.Close())
	assert.Equal(t, 1, countSnapshots(t, cfg.DBPath))
}

func TestDisabledCollectorIsNoop(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "telemetry.db")

	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)

	require.NoError(t, collector.Record(context.Background(), &telemetry.Snapshot{}))
	require.NoError(t, collector.Close())

	assert.NoFileExists(t, cfg.DBPath, "no-op collector must not create the database")
}

func TestNilSnapshotRejected(t *testing.T) {
	cfg := testConfig(t)
	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)
	defer collector.Close()

	require.Error(t, collector.Record(context.Background(), nil))
}
