package traffic

import (
	"encoding/json"

	"skyroute/internal/geo"
	"skyroute/internal/ws"
)

// routeTolerance is the distance, in meters, within which an advisory is
// considered to concern a route.
const routeTolerance = 30.0

// Multicaster pushes an advisory to every connected client whose active
// route passes near it. Clients without a route never hear about it.
type Multicaster struct {
	manager *ws.Manager
}

func NewMulticaster(manager *ws.Manager) *Multicaster {
	return &Multicaster{manager: manager}
}

func (m *Multicaster) Multicast(advisory *Advisory, action Action) {
	payload, err := json.Marshal(Envelope{Data: *advisory, Action: action})
	if err != nil {
		return
	}

	point := advisory.Coordinate()
	m.manager.ForEachClient(func(client *ws.Client) {
		geometry := client.ActiveGeometry()
		if len(geometry) == 0 {
			return
		}
		if geo.IsPointInPolyline(point, geometry, routeTolerance) {
			client.Send(ws.Message{Type: "advisory", Data: payload})
		}
	})
}
