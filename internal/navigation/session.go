package navigation

import (
	"context"
	"errors"
	"time"

	"skyroute/internal/directions"
	"skyroute/internal/geo"
)

// ErrSessionNotFound is returned by a SessionCache when nothing is cached
// under the ID.
var ErrSessionNotFound = errors.New("session not found")

// Sample is a single reading of the user's live location. Altitude and
// Heading are optional; heading falls back to 0 for the chase camera when
// the device does not report one.
type Sample struct {
	Lon       float64   `json:"longitude"`
	Lat       float64   `json:"latitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s Sample) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lon: s.Lon, Lat: s.Lat}
}

// Subscription is the handle of an active position watch. Cancel stops
// delivery; a callback already in flight at cancellation time may still
// complete and update the display once more, which is tolerated.
type Subscription interface {
	Cancel()
}

// PositionSource delivers live position samples. Implementations must
// deliver samples serially in arrival order; no two callbacks run
// concurrently.
type PositionSource interface {
	Watch(onSample func(Sample), onError func(error)) (Subscription, error)
}

// Session is the persisted snapshot of an active navigation session, cached
// so a reconnecting client can resume where it left off.
type Session struct {
	ID           string            `json:"session_id"`
	Route        *directions.Route `json:"route,omitempty"`
	StepIndex    int               `json:"step_index"`
	Progress     float64           `json:"progress"`
	State        State             `json:"state"`
	LastPosition *Sample           `json:"last_position,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type SessionCache interface {
	SetSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
