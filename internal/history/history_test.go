package history_test

import (
	"testing"
	"time"

	"codeberg.org/waldrek/battwatch/internal/battery"
	"codeberg.org/waldrek/battwatch/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(i int) battery.Sample {
	return battery.Sample{
		Timestamp: time.Unix(int64(i*5), 0),
		Level:     float64(100 - i),
	}
}

func TestRecordBelowCapacity(t *testing.T) {
	buf := history.New(60)

	for i := 0; i < 12; i++ {
		buf.Record(sampleAt(i))
	}

	require.Equal(t, 12, buf.Len())
	snap := buf.Snapshot()
	for i, s := range snap {
		assert.Equal(t, sampleAt(i), s, "sample %d out of order", i)
	}
}

func TestRecordEvictsOldest(t *testing.T) {
	const capacity = 10
	buf := history.New(capacity)

	for i := 0; i < capacity+7; i++ {
		buf.Record(sampleAt(i))
	}

	require.Equal(t, capacity, buf.Len(), "buffer must never exceed capacity")
	snap := buf.Snapshot()
	for i, s := range snap {
		assert.Equal(t, sampleAt(i+7), s, "expected the most recent %d samples", capacity)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	buf := history.New(4)
	buf.Record(sampleAt(0))

	snap := buf.Snapshot()
	snap[0].Level = -1

	assert.Equal(t, sampleAt(0), buf.Snapshot()[0], "mutating a snapshot must not affect the buffer")
}

func TestLast(t *testing.T) {
	buf := history.New(60)
	for i := 0; i < 5; i++ {
		buf.Record(sampleAt(i))
	}

	last := buf.Last(10)
	require.Len(t, last, 5, "Last must cap at the buffer length")
	assert.Equal(t, sampleAt(0), last[0])

	last = buf.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, sampleAt(3), last[0])
	assert.Equal(t, sampleAt(4), last[1])

	assert.Nil(t, buf.Last(0))
}
