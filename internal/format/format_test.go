package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0 min"},
		{59, "0 min"},
		{60, "1 min"},
		{90, "1 min"},
		{3599, "59 min"},
		{3600, "1h 0m"},
		{5400, "1h 30m"},
		{7325, "2h 2m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.seconds), "Duration(%v)", tt.seconds)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "0 m"},
		{999, "999 m"},
		{999.4, "999 m"},
		{1000, "1.0 km"},
		{1500, "1.5 km"},
		{12345, "12.3 km"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.meters), "Distance(%v)", tt.meters)
	}
}

func TestFuelCost(t *testing.T) {
	// 10 km at 10 km/l and $1.50/l is one liter and a half dollar.
	assert.InDelta(t, 1.5, FuelCost(10000), 1e-9)
	assert.InDelta(t, 0.15, FuelCost(1000), 1e-9)
	assert.Zero(t, FuelCost(0))
}
