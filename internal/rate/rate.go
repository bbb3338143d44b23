// Package rate estimates discharge current from battery level decay.
package rate

import (
	"time"

	"codeberg.org/waldrek/battwatch/internal/history"
)

const maxStoredEstimates = 10

// Estimator converts percent-per-hour level loss into a current estimate
// (mA) scaled by an assumed pack capacity, and keeps a bounded rolling
// window of estimates for smoothing. The capacity is a session constant, not
// a calibrated value; the result is a rough gauge, not a fuel gauge.
type Estimator struct {
	capacityMAH float64
	window      int
	estimates   []float64
}

// NewEstimator returns an estimator assuming the given pack capacity in mAh
// and deriving each estimate from the trailing window samples of history.
func NewEstimator(capacityMAH float64, window int) *Estimator {
	if window < 2 {
		window = 2
	}
	return &Estimator{
		capacityMAH: capacityMAH,
		window:      window,
	}
}

// Observe derives a new estimate from the trailing window of hist. It does
// nothing while charging, with fewer than two samples, or when the level is
// flat or rising (sensor noise while reportedly discharging).
func (e *Estimator) Observe(hist *history.Buffer, charging bool) {
	if charging {
		return
	}

	win := hist.Last(e.window)
	if len(win) < 2 {
		return
	}

	oldest, newest := win[0], win[len(win)-1]
	timeDiffHours := newest.Timestamp.Sub(oldest.Timestamp).Hours()
	levelDiff := oldest.Level - newest.Level
	if timeDiffHours <= 0 || levelDiff <= 0 {
		return
	}

	ma := levelDiff / timeDiffHours / 100 * e.capacityMAH
	e.estimates = append(e.estimates, ma)
	if len(e.estimates) > maxStoredEstimates {
		e.estimates = e.estimates[1:]
	}
}

// Average returns the arithmetic mean of the stored estimates in mA, or 0
// when no estimate exists yet. Callers must treat 0 as "insufficient data",
// not as a true zero-current reading.
func (e *Estimator) Average() float64 {
	if len(e.estimates) == 0 {
		return 0
	}

	sum := 0.0
	for _, ma := range e.estimates {
		sum += ma
	}

	return sum / float64(len(e.estimates))
}

// TimeRemaining derives a runtime estimate for the given level percent from
// the averaged discharge current. The second return is false while the
// average is still the no-data sentinel.
func (e *Estimator) TimeRemaining(levelPercent float64) (time.Duration, bool) {
	avg := e.Average()
	if avg <= 0 || levelPercent <= 0 {
		return 0, false
	}

	hours := levelPercent / 100 * e.capacityMAH / avg

	return time.Duration(hours * float64(time.Hour)), true
}
