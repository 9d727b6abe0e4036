package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialBearingFinite(t *testing.T) {
	pairs := [][2]Coordinate{
		{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}},
		{{Lon: -73.98, Lat: 40.74}, {Lon: 2.35, Lat: 48.85}},
		{{Lon: 179.9, Lat: 10}, {Lon: -179.9, Lat: 10}},
		{{Lon: 0, Lat: 89}, {Lon: 0, Lat: -89}},
	}

	for _, pair := range pairs {
		b := InitialBearing(pair[0], pair[1])
		require.False(t, math.IsNaN(b) || math.IsInf(b, 0), "bearing must be finite for %v", pair)
	}
}

func TestInitialBearingReciprocal(t *testing.T) {
	a := Coordinate{Lon: 2.3522, Lat: 48.8566}
	b := Coordinate{Lon: 2.2945, Lat: 48.8584}

	fwd := NormalizeBearing(InitialBearing(a, b))
	back := NormalizeBearing(InitialBearing(b, a))

	diff := math.Mod(back-fwd+360, 360)
	assert.InDelta(t, 180, diff, 0.5)
}

func TestInitialBearingCardinal(t *testing.T) {
	origin := Coordinate{Lon: 0, Lat: 0}

	assert.InDelta(t, 0, InitialBearing(origin, Coordinate{Lon: 0, Lat: 1}), 1e-9)
	assert.InDelta(t, 90, InitialBearing(origin, Coordinate{Lon: 1, Lat: 0}), 1e-9)
	assert.InDelta(t, 180, math.Abs(InitialBearing(origin, Coordinate{Lon: 0, Lat: -1})), 1e-9)
	assert.InDelta(t, -90, InitialBearing(origin, Coordinate{Lon: -1, Lat: 0}), 1e-9)
}

func TestNormalizeBearing(t *testing.T) {
	assert.InDelta(t, 270, NormalizeBearing(-90), 1e-9)
	assert.InDelta(t, 0, NormalizeBearing(360), 1e-9)
	assert.InDelta(t, 10, NormalizeBearing(730), 1e-9)
}

func TestChordDistance(t *testing.T) {
	a := Coordinate{Lon: 0, Lat: 0}
	b := Coordinate{Lon: 0, Lat: 0.001} // ~111 m of latitude

	d := ChordDistance(a, b)
	assert.InDelta(t, 110.6, d, 1.0)

	assert.Zero(t, ChordDistance(a, a))
}

func TestRemainingDistanceAtMidVertex(t *testing.T) {
	path := []Coordinate{
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 1},
		{Lon: 0, Lat: 2},
	}

	// Standing exactly on the middle vertex: only the last segment remains.
	remaining := RemainingDistance(path, Coordinate{Lon: 0, Lat: 1})
	want := ChordDistance(path[1], path[2])
	assert.InDelta(t, want, remaining, 1e-6)
}

func TestRemainingDistanceAtStartAndEnd(t *testing.T) {
	path := []Coordinate{
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 1},
		{Lon: 0, Lat: 2},
	}

	assert.InDelta(t, PathLength(path), RemainingDistance(path, path[0]), 1e-6)
	assert.Zero(t, RemainingDistance(path, path[2]))
}

func TestRemainingDistanceDegeneratePaths(t *testing.T) {
	assert.Zero(t, RemainingDistance(nil, Coordinate{}))
	assert.Zero(t, RemainingDistance([]Coordinate{{Lon: 1, Lat: 1}}, Coordinate{}))
}

func TestHaversineKnownDistance(t *testing.T) {
	paris := Coordinate{Lon: 2.3522, Lat: 48.8566}
	london := Coordinate{Lon: -0.1276, Lat: 51.5072}

	d := Haversine(paris, london)
	assert.InDelta(t, 344000, d, 2500)
}

func TestIsPointInPolyline(t *testing.T) {
	line := []Coordinate{
		{Lon: 0, Lat: 0},
		{Lon: 0.01, Lat: 0},
	}

	on := Coordinate{Lon: 0.005, Lat: 0}
	near := Coordinate{Lon: 0.005, Lat: 0.0001} // ~11 m off the line
	far := Coordinate{Lon: 0.005, Lat: 0.01}

	assert.True(t, IsPointInPolyline(on, line, 1))
	assert.True(t, IsPointInPolyline(near, line, 30))
	assert.False(t, IsPointInPolyline(far, line, 30))
	assert.False(t, IsPointInPolyline(on, nil, 30))
}
