package geo

import (
	"math"
)

// WGS84 ellipsoid
const (
	EarthRadius    = 6378137
	flattening     = 1 / 298.257223563
	eccentricitySq = flattening * (2 - flattening)
)

const degToRad = math.Pi / 180

// VertexHeight is the fixed height (in meters) at which path vertices and
// position samples are placed above the ellipsoid before measuring chords.
const VertexHeight = 2.0

// Coordinate is a geographic position in decimal degrees, longitude first
// to match the GeoJSON [lon, lat] pair ordering of the directions API.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Cartesian converts a geodetic coordinate at the given height to
// earth-centered earth-fixed coordinates on the WGS84 ellipsoid.
func Cartesian(c Coordinate, height float64) (x, y, z float64) {
	lat := c.Lat * degToRad
	lon := c.Lon * degToRad

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Prime vertical radius of curvature
	n := EarthRadius / math.Sqrt(1-eccentricitySq*sinLat*sinLat)

	x = (n + height) * cosLat * math.Cos(lon)
	y = (n + height) * cosLat * math.Sin(lon)
	z = (n*(1-eccentricitySq) + height) * sinLat
	return x, y, z
}

// ChordDistance is the straight-line distance in meters between two
// coordinates placed at VertexHeight. It is a flat-earth chord, not a
// geodesic, which is fine at the meter scale navigation operates at.
func ChordDistance(a, b Coordinate) float64 {
	ax, ay, az := Cartesian(a, VertexHeight)
	bx, by, bz := Cartesian(b, VertexHeight)
	dx, dy, dz := bx-ax, by-ay, bz-az
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// InitialBearing returns the initial bearing in degrees from one coordinate
// to another. The result is the raw atan2 output in (-180, 180]; callers
// that need a compass heading should pass it through NormalizeBearing.
func InitialBearing(from, to Coordinate) float64 {
	dLon := (to.Lon - from.Lon) * degToRad
	latA := from.Lat * degToRad
	latB := to.Lat * degToRad

	y := math.Sin(dLon) * math.Cos(latB)
	x := math.Cos(latA)*math.Sin(latB) - math.Sin(latA)*math.Cos(latB)*math.Cos(dLon)
	return math.Atan2(y, x) / degToRad
}

// NormalizeBearing maps a bearing in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// PathLength sums consecutive-vertex chord distances over the whole path.
func PathLength(path []Coordinate) float64 {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		total += ChordDistance(path[i], path[i+1])
	}
	return total
}

// RemainingDistance scans the path for the vertex closest to pos (ties break
// on the first minimum) and sums consecutive-vertex chords from that vertex
// to the end of the path. On a path that loops back near itself the closest
// vertex may lie behind the traveller; that approximation is accepted.
func RemainingDistance(path []Coordinate, pos Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}

	closest := 0
	minDist := math.Inf(1)
	for i, v := range path {
		if d := ChordDistance(pos, v); d < minDist {
			minDist = d
			closest = i
		}
	}

	var remaining float64
	for i := closest; i < len(path)-1; i++ {
		remaining += ChordDistance(path[i], path[i+1])
	}
	return remaining
}

// Haversine distance between two coordinates in meters on a spherical earth.
func Haversine(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad

	sinDlat := math.Sin(dLat / 2)
	sinDlon := math.Sin(dLon / 2)

	h := sinDlat*sinDlat + sinDlon*sinDlon*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// IsPointInPolyline returns true if the point is within tolerance distance
// (in meters) from the polyline.
func IsPointInPolyline(point Coordinate, polyline []Coordinate, tolerance float64) bool {
	if len(polyline) == 0 {
		return false
	}
	if len(polyline) == 1 {
		return Haversine(point, polyline[0]) <= tolerance
	}

	for i := 0; i < len(polyline)-1; i++ {
		if distanceToSegment(point, polyline[i], polyline[i+1]) <= tolerance {
			return true
		}
	}
	return false
}

// distanceToSegment calculates the minimum distance (in meters) from point P
// to the segment [A, B] using a local Cartesian projection around the
// segment's reference latitude.
// https://www.movable-type.co.uk/scripts/latlong.html
func distanceToSegment(p, a, b Coordinate) float64 {
	lat1 := a.Lat * degToRad
	lon1 := a.Lon * degToRad
	lat2 := b.Lat * degToRad
	lon2 := b.Lon * degToRad
	latP := p.Lat * degToRad
	lonP := p.Lon * degToRad

	latRef := (lat1 + lat2) / 2
	cosLatRef := math.Cos(latRef)

	xA, yA := lon1*EarthRadius*cosLatRef, lat1*EarthRadius
	xB, yB := lon2*EarthRadius*cosLatRef, lat2*EarthRadius
	xP, yP := lonP*EarthRadius*cosLatRef, latP*EarthRadius

	dx, dy := xB-xA, yB-yA

	// Degenerate segment case (A == B)
	if dx == 0 && dy == 0 {
		return math.Hypot(xP-xA, yP-yA)
	}

	t := ((xP-xA)*dx + (yP-yA)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	xProj := xA + t*dx
	yProj := yA + t*dy

	return math.Hypot(xP-xProj, yP-yProj)
}
