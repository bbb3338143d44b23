package battery

import (
	"math/rand"

	"github.com/shirou/gopsutil/v3/host"
)

// Cosmetics are fabricated display-only readouts. Nothing here is sensed
// from the battery and none of it feeds the estimator.
type Cosmetics struct {
	HealthPercent float64
	TemperatureC  float64
	Voltage       float64
}

// ReadCosmetics synthesizes plausible health, temperature and voltage values
// for the given charge state. Temperature is seeded from host sensors when
// the platform exposes any.
func ReadCosmetics(level float64, charging bool) Cosmetics {
	temp := hostTemperature()
	if temp <= 0 {
		temp = 24 + 8*level + rand.Float64()*2
	}
	if charging {
		temp += 3
	}

	voltage := 10.8 + 1.8*level
	if charging {
		voltage += 0.25
	}

	return Cosmetics{
		HealthPercent: 93 + rand.Float64()*2,
		TemperatureC:  temp,
		Voltage:       voltage,
	}
}

func hostTemperature() float64 {
	stats, err := host.SensorsTemperatures()
	if err != nil {
		return 0
	}
	for _, stat := range stats {
		if stat.Temperature > 0 {
			return stat.Temperature
		}
	}
	return 0
}
