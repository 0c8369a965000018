// Package weather models wind and ambient conditions over the forest.
package weather

import (
	"math"
	"math/rand"
)

// Ambient baselines.
const (
	MinAmbientTemperature  = 20.0
	AmbientTemperatureSpan = 5.0
	HumidityJitter         = 5.0
)

// Wind holds speed in m/s and direction in degrees, 0 pointing toward
// increasing column.
type Wind struct {
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

// Clamp limits speed to [0,max] and folds direction into [0,360).
func (w Wind) Clamp(maxSpeed float64) Wind {
	w.Speed = math.Max(0, math.Min(maxSpeed, w.Speed))
	w.Direction = NormalizeDirection(w.Direction)
	return w
}

// Drift applies a small random walk scaled by elapsed seconds.
func (w Wind) Drift(elapsed, maxSpeed float64, rng *rand.Rand) Wind {
	w.Speed += (rng.Float64() - 0.5) * elapsed
	w.Direction += (rng.Float64() - 0.5) * 10 * elapsed
	return w.Clamp(maxSpeed)
}

// NormalizeDirection folds degrees into [0,360).
func NormalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// Ambient is the per-tick environment seen by the sensors.
type Ambient struct {
	Temperature float64
	Humidity    float64
}

// SampleAmbient draws a temperature in [20,25) and a humidity within ±5 of
// baseline, limited to [0,100].
func SampleAmbient(baseline float64, rng *rand.Rand) Ambient {
	return Ambient{
		Temperature: MinAmbientTemperature + rng.Float64()*AmbientTemperatureSpan,
		Humidity:    math.Max(0, math.Min(100, baseline+rng.Float64()*2*HumidityJitter-HumidityJitter)),
	}
}
