package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is the flat per-tick record that gets persisted.
type Snapshot struct {
	Timestamp         time.Time
	Level             int
	Charging          bool
	AverageRateMA     float64
	TimeRemainingSecs int64 // -1 when unknown
	Alert             string
}
