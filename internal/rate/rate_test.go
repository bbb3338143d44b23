package rate_test

import (
	"testing"
	"time"

	"codeberg.org/waldrek/battwatch/internal/battery"
	"codeberg.org/waldrek/battwatch/internal/history"
	"codeberg.org/waldrek/battwatch/internal/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillLinearDecay records samples losing levelDrop percent over the given
// span, evenly spaced.
func fillLinearDecay(buf *history.Buffer, start time.Time, startLevel, levelDrop float64, span time.Duration, n int) {
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		buf.Record(battery.Sample{
			Timestamp: start.Add(time.Duration(frac * float64(span))),
			Level:     startLevel - frac*levelDrop,
		})
	}
}

func TestLinearDecayRate(t *testing.T) {
	// 10% over one hour at 3000 mAh is a 300 mA draw.
	est := rate.NewEstimator(3000, 10)
	buf := history.New(60)
	fillLinearDecay(buf, time.Unix(0, 0), 90, 10, time.Hour, 10)

	est.Observe(buf, false)

	assert.InDelta(t, 300, est.Average(), 0.01)
}

func TestWindowUsesTrailingSamples(t *testing.T) {
	est := rate.NewEstimator(3000, 10)
	buf := history.New(60)
	fillLinearDecay(buf, time.Unix(0, 0), 100, 10, time.Hour, 20)

	est.Observe(buf, false)

	// Trailing 10 of 20 evenly spaced samples span 9/19 of the hour and
	// 9/19 of the 10% drop, so the ratio still comes out at 300 mA.
	assert.InDelta(t, 300, est.Average(), 0.01)
}

func TestChargingSampleIgnored(t *testing.T) {
	est := rate.NewEstimator(3000, 10)
	buf := history.New(60)
	fillLinearDecay(buf, time.Unix(0, 0), 90, 10, time.Hour, 10)

	est.Observe(buf, true)

	assert.Zero(t, est.Average(), "charging ticks must not produce estimates")
}

func TestFlatOrRisingLevelIgnored(t *testing.T) {
	est := rate.NewEstimator(3000, 10)
	buf := history.New(60)

	start := time.Unix(0, 0)
	buf.Record(battery.Sample{Timestamp: start, Level: 50})
	buf.Record(battery.Sample{Timestamp: start.Add(5 * time.Second), Level: 50})
	est.Observe(buf, false)
	assert.Zero(t, est.Average(), "flat level must be skipped")

	buf.Record(battery.Sample{Timestamp: start.Add(10 * time.Second), Level: 51})
	est.Observe(buf, false)
	assert.Zero(t, est.Average(), "rising level while discharging must be skipped")
}

func TestSingleSampleProducesNothing(t *testing.T) {
	est := rate.NewEstimator(3000, 10)
	buf := history.New(60)
	buf.Record(battery.Sample{Timestamp: time.Unix(0, 0), Level: 80})

	est.Observe(buf, false)

	assert.Zero(t, est.Average())
}

func TestAverageIsMeanOfStoredEstimates(t *testing.T) {
	est := rate.NewEstimator(3000, 10)

	// Each fresh buffer produces one estimate; different decay slopes give
	// different rates.
	start := time.Unix(0, 0)
	slopes := []float64{5, 10, 15} // percent per hour -> 150, 300, 450 mA
	for _, slope := range slopes {
		b := history.New(60)
		fillLinearDecay(b, start, 90, slope, time.Hour, 10)
		est.Observe(b, false)
	}

	assert.InDelta(t, 300, est.Average(), 0.01, "average must be the arithmetic mean")
}

func TestEstimateBufferIsBounded(t *testing.T) {
	est := rate.NewEstimator(3000, 10)

	// Push 15 estimates with a drifting slope; only the last 10 may count.
	start := time.Unix(0, 0)
	for i := 0; i < 15; i++ {
		b := history.New(60)
		fillLinearDecay(b, start, 90, float64(i+1), time.Hour, 10)
		est.Observe(b, false)
	}

	// Slopes 6..15 percent/hour remain: mean 10.5%/h -> 315 mA.
	assert.InDelta(t, 315, est.Average(), 0.01)
}

func TestTimeRemaining(t *testing.T) {
	est := rate.NewEstimator(3000, 10)

	_, ok := est.TimeRemaining(50)
	require.False(t, ok, "no estimate yet must report unknown")

	buf := history.New(60)
	fillLinearDecay(buf, time.Unix(0, 0), 90, 10, time.Hour, 10)
	est.Observe(buf, false)

	remaining, ok := est.TimeRemaining(50)
	require.True(t, ok)
	// 50% of 3000 mAh at 300 mA is five hours.
	assert.InDelta(t, (5 * time.Hour).Hours(), remaining.Hours(), 0.01)
}
