package directions

import (
	"encoding/json"
	"fmt"
	"time"

	"skyroute/internal/geo"
)

// Profile identifies a routing profile of the directions service.
type Profile string

const (
	ProfileDrivingCar         Profile = "driving-car"
	ProfileDrivingCarShortest Profile = "driving-car-shortest"
	ProfileDrivingCarEco      Profile = "driving-car-eco"
	ProfileCyclingRegular     Profile = "cycling-regular"
	ProfileFootWalking        Profile = "foot-walking"
)

func (p Profile) IsValid() bool {
	switch p {
	case ProfileDrivingCar, ProfileDrivingCarShortest, ProfileDrivingCarEco,
		ProfileCyclingRegular, ProfileFootWalking:
		return true
	default:
		return false
	}
}

// Route is a fetched route. It is immutable once returned by the client and
// replaced wholesale when a new one is requested.
type Route struct {
	Geometry []geo.Coordinate `json:"geometry"`
	Steps    []Step           `json:"steps"`
	Summary  Summary          `json:"summary"`
}

// Step is a single turn-by-turn instruction with its maneuver location.
type Step struct {
	Instruction string         `json:"instruction"`
	Distance    float64        `json:"distance"`
	Duration    float64        `json:"duration"`
	Maneuver    geo.Coordinate `json:"maneuver"`
}

// Summary carries route totals in meters and seconds.
type Summary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// TrafficData is the live congestion overlay for a route geometry.
type TrafficData struct {
	LastUpdated time.Time        `json:"last_updated"`
	Segments    []TrafficSegment `json:"segments"`
}

type TrafficSegment struct {
	Coordinates []geo.Coordinate `json:"coordinates"`
	Congestion  float64          `json:"congestion"` // 0-1 scale
	Speed       float64          `json:"speed"`      // km/h
}

// lonLat decodes a GeoJSON [lon, lat] pair.
type lonLat geo.Coordinate

func (p *lonLat) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("coordinate pair has %d elements", len(pair))
	}
	p.Lon, p.Lat = pair[0], pair[1]
	return nil
}

// Wire format of the directions response (GeoJSON FeatureCollection).

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []lonLat `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Summary  Summary       `json:"summary"`
		Segments []segmentWire `json:"segments"`
	} `json:"properties"`
}

type segmentWire struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []stepWire `json:"steps"`
}

type stepWire struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Maneuver    struct {
		Type     string `json:"type"`
		Location lonLat `json:"location"`
	} `json:"maneuver"`
}

// toRoute flattens the first feature into a Route: the full coordinate
// sequence plus a flat step list across all segments.
func (f *feature) toRoute() *Route {
	route := &Route{
		Geometry: make([]geo.Coordinate, len(f.Geometry.Coordinates)),
		Summary:  f.Properties.Summary,
	}
	for i, c := range f.Geometry.Coordinates {
		route.Geometry[i] = geo.Coordinate(c)
	}
	for _, seg := range f.Properties.Segments {
		for _, s := range seg.Steps {
			route.Steps = append(route.Steps, Step{
				Instruction: s.Instruction,
				Distance:    s.Distance,
				Duration:    s.Duration,
				Maneuver:    geo.Coordinate(s.Maneuver.Location),
			})
		}
	}
	return route
}
