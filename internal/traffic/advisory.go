package traffic

import (
	"fmt"

	"skyroute/internal/geo"
)

// Advisory is a point traffic event published on the advisory channel:
// an accident, closure, slowdown or hazard near a road.
type Advisory struct {
	ID       int     `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Kind     string  `json:"kind"`
	Severity int     `json:"severity"`
	Text     string  `json:"text"`
}

func (a *Advisory) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("invalid ID: %d", a.ID)
	}
	if a.Kind == "" {
		return fmt.Errorf("missing kind")
	}
	if a.Lat < -90 || a.Lat > 90 {
		return fmt.Errorf("invalid latitude: %f", a.Lat)
	}
	if a.Lon < -180 || a.Lon > 180 {
		return fmt.Errorf("invalid longitude: %f", a.Lon)
	}
	return nil
}

func (a *Advisory) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lon: a.Lon, Lat: a.Lat}
}

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionResolved Action = "resolved"
)

func (a *Action) IsValid() bool {
	switch *a {
	case ActionCreate, ActionUpdate, ActionResolved:
		return true
	}
	return false
}

// Envelope is the shape of every message on the advisory pub/sub channel.
type Envelope struct {
	Data   Advisory `json:"data"`
	Action Action   `json:"action"`
}
