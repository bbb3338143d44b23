package battery

import (
	"time"

	"codeberg.org/waldrek/battwatch/internal/errors"
	"codeberg.org/waldrek/battwatch/internal/logger"
	distatus "github.com/distatus/battery"
)

type hwSource struct{}

// NewHardwareSource probes the host battery once and returns a poll-only
// source backed by it. Hosts without a battery fail here, before the
// monitoring loop starts.
func NewHardwareSource() (Source, error) {
	errFactory := errors.New()

	bats, err := distatus.GetAll()
	if err != nil {
		if _, partial := err.(distatus.Errors); !partial {
			return nil, errFactory.Wrap(errors.ErrReadBattery, err)
		}
	}
	if usableCount(bats) == 0 {
		return nil, errFactory.New(errors.ErrNoBattery)
	}

	logger.Info().Int("batteries", usableCount(bats)).Msg("Detected host battery")

	return &hwSource{}, nil
}

func (*hwSource) Read() (Status, error) {
	errFactory := errors.New()

	bats, err := distatus.GetAll()
	if err != nil {
		// Partial errors still carry readable packs; only fail when
		// nothing was read.
		if _, partial := err.(distatus.Errors); !partial || usableCount(bats) == 0 {
			return Status{}, errFactory.Wrap(errors.ErrReadBattery, err)
		}
	}
	if usableCount(bats) == 0 {
		return Status{}, errFactory.New(errors.ErrNoBattery)
	}

	var totalCapacity, totalCharge, totalRate float64
	charging := false
	for _, bat := range bats {
		if bat == nil || (bat.Full == 0 && bat.Design == 0) {
			continue
		}
		if bat.Design != 0 {
			totalCapacity += bat.Design
		} else {
			totalCapacity += bat.Full
		}
		totalCharge += bat.Current
		totalRate += bat.ChargeRate
		if bat.State.Raw == distatus.Charging {
			charging = true
		}
	}

	st := Status{
		Level:    clampFraction(totalCharge / totalCapacity),
		Charging: charging,
	}

	// ChargeRate is mW, charges are mWh, so hours fall out directly.
	if totalRate > 0 {
		if charging {
			full := fullCharge(bats)
			if full > totalCharge {
				st.ChargingTime = hoursToDuration((full - totalCharge) / totalRate)
				st.ChargingTimeKnown = true
			}
		} else {
			st.DischargingTime = hoursToDuration(totalCharge / totalRate)
			st.DischargingTimeKnown = true
		}
	}

	return st, nil
}

func usableCount(bats []*distatus.Battery) int {
	n := 0
	for _, bat := range bats {
		if bat != nil && (bat.Full != 0 || bat.Design != 0) {
			n++
		}
	}
	return n
}

func fullCharge(bats []*distatus.Battery) float64 {
	var full float64
	for _, bat := range bats {
		if bat != nil {
			full += bat.Full
		}
	}
	return full
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
