// Package format renders raw route quantities into the strings shown to
// the user.
package format

import (
	"fmt"
	"math"
)

const (
	fuelEfficiency = 10  // km per liter
	fuelPrice      = 1.5 // dollars per liter
)

// Duration renders a duration in seconds as "N min" under an hour (floored)
// and "Xh Ym" from an hour up.
func Duration(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// Distance renders a distance in meters as "999 m" below a kilometer
// (rounded) and "1.5 km" with one decimal from a kilometer up.
func Distance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}

// FuelCost estimates the fuel cost in dollars for a trip of the given
// length in meters, rounded to cents.
func FuelCost(meters float64) float64 {
	cost := meters / 1000 / fuelEfficiency * fuelPrice
	return math.Round(cost*100) / 100
}
