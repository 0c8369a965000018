package propagation

import (
	"math"

	"wildfire-sim/internal/grid"
)

// Bearing is the direction from a to b in degrees, with 0 pointing toward
// increasing column and 90 toward increasing row.
func Bearing(a, b grid.Pos) float64 {
	return math.Atan2(float64(b.Row-a.Row), float64(b.Col-a.Col)) * 180 / math.Pi
}

// AngularDifference returns the smallest angle between two headings, in [0,180].
func AngularDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// WindAlignment is 1 when bearing matches the wind direction and 0 when opposite.
func WindAlignment(windDirection, bearing float64) float64 {
	return 1 - AngularDifference(windDirection, bearing)/180
}
