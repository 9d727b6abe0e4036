package navigation

import (
	"skyroute/internal/geo"
)

const (
	// chasePitch looks down at the traveller from behind.
	chasePitch    = -45.0
	chaseDuration = 0.5

	// eyeHeight places the first-person camera at head height.
	eyeHeight = 1.7

	// overviewHeight frames a whole city-to-city route.
	overviewHeight   = 20000.0
	overviewPitch    = -45.0
	overviewDuration = 2.0
)

// CameraPose is a view placement pushed to the renderer. Duration is the
// flight time in seconds; zero means snap with no animated transition.
type CameraPose struct {
	Target   geo.Coordinate `json:"target"`
	Height   float64        `json:"height"`
	Heading  float64        `json:"heading"`
	Pitch    float64        `json:"pitch"`
	Roll     float64        `json:"roll"`
	Duration float64        `json:"duration"`
}

// OverviewPose frames the start of a path: placed over the first vertex at
// overview altitude, heading along the first two path points.
func OverviewPose(path []geo.Coordinate) CameraPose {
	pose := CameraPose{
		Height:   overviewHeight,
		Pitch:    overviewPitch,
		Duration: overviewDuration,
	}
	if len(path) == 0 {
		return pose
	}
	pose.Target = path[0]
	if len(path) > 1 {
		pose.Heading = geo.NormalizeBearing(geo.InitialBearing(path[0], path[1]))
	}
	return pose
}

// chasePose smoothly follows the traveller at the device-reported heading.
func chasePose(s Sample) CameraPose {
	heading := 0.0
	if s.Heading != nil {
		heading = *s.Heading
	}

	height := geo.VertexHeight
	if s.Altitude != nil {
		height = *s.Altitude
	}

	return CameraPose{
		Target:   s.Coordinate(),
		Height:   height,
		Heading:  geo.NormalizeBearing(heading),
		Pitch:    chasePitch,
		Duration: chaseDuration,
	}
}

// firstPersonPose snaps to the traveller's position at eye height, facing
// the next maneuver.
func firstPersonPose(s Sample, nextManeuver geo.Coordinate) CameraPose {
	return CameraPose{
		Target:  s.Coordinate(),
		Height:  eyeHeight,
		Heading: geo.NormalizeBearing(geo.InitialBearing(s.Coordinate(), nextManeuver)),
		Pitch:   0,
	}
}
