package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Route statuses
const (
	RouteStatusActive    = "active"
	RouteStatusCompleted = "completed"
	RouteStatusCancelled = "cancelled"
)

// Share permissions
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// Location is a named point, coordinates ordered [longitude, latitude]
type Location struct {
	Coordinates [2]float64 `json:"coordinates"`
	Name        string     `json:"name,omitempty"`
	Address     string     `json:"address,omitempty"`
}

// Value implements the driver.Valuer interface
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *Location) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Waypoint is an intermediate stop on a route
type Waypoint struct {
	Location
	StopType string `json:"stop_type,omitempty"` // fuel, rest, food, other
}

// WaypointList stores the ordered waypoints as a JSONB array
type WaypointList []Waypoint

// Value implements the driver.Valuer interface
func (w WaypointList) Value() (driver.Value, error) {
	if w == nil {
		return json.Marshal([]Waypoint{})
	}
	return json.Marshal(w)
}

// Scan implements the sql.Scanner interface
func (w *WaypointList) Scan(value interface{}) error {
	return scanJSON(value, w)
}

// RouteStep mirrors a single turn instruction from the directions service
type RouteStep struct {
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Instruction string     `json:"instruction"`
	Name        string     `json:"name,omitempty"`
	Maneuver    [2]float64 `json:"maneuver"`
}

// RouteProperties summarizes the computed route
type RouteProperties struct {
	Distance float64     `json:"distance"` // meters
	Duration float64     `json:"duration"` // seconds
	Steps    []RouteStep `json:"steps"`
}

// RouteDocument is the stored route geometry and properties
type RouteDocument struct {
	Geometry   [][2]float64    `json:"geometry"` // [lon, lat] pairs
	Properties RouteProperties `json:"properties"`
}

// Value implements the driver.Valuer interface
func (d RouteDocument) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface
func (d *RouteDocument) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// TrafficSegment is a congestion reading along part of the route
type TrafficSegment struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Congestion  float64      `json:"congestion"` // 0-1 scale
	Speed       float64      `json:"speed"`      // km/h
}

// TrafficInfo is the cached traffic snapshot for a route
type TrafficInfo struct {
	LastUpdated time.Time        `json:"last_updated"`
	Segments    []TrafficSegment `json:"segments"`
}

// Value implements the driver.Valuer interface
func (t *TrafficInfo) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface
func (t *TrafficInfo) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// RoutePreferences records how the route was requested
type RoutePreferences struct {
	Profile       string `json:"profile"`
	AvoidHighways bool   `json:"avoid_highways"`
	AvoidTolls    bool   `json:"avoid_tolls"`
}

// Value implements the driver.Valuer interface
func (p RoutePreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *RoutePreferences) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// Share grants another user access to a route
type Share struct {
	UserID      uuid.UUID `json:"user_id"`
	Permissions string    `json:"permissions"`
}

// ShareList stores the route shares as a JSONB array
type ShareList []Share

// Value implements the driver.Valuer interface
func (s ShareList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]Share{})
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *ShareList) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// RouteAnalytics counts usage of a single route
type RouteAnalytics struct {
	Views           int        `json:"views"`
	Completions     int        `json:"completions"`
	AverageDuration float64    `json:"average_duration,omitempty"`
	LastUsed        *time.Time `json:"last_used,omitempty"`
}

// Value implements the driver.Valuer interface
func (a RouteAnalytics) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *RouteAnalytics) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// StoredRoute is a saved route owned by a user
type StoredRoute struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Name          string           `json:"name" db:"name"`
	StartLocation Location         `json:"start_location" db:"start_location"`
	EndLocation   Location         `json:"end_location" db:"end_location"`
	Waypoints     WaypointList     `json:"waypoints" db:"waypoints"`
	RouteData     RouteDocument    `json:"route_data" db:"route_data"`
	TrafficData   *TrafficInfo     `json:"traffic_data,omitempty" db:"traffic_data"`
	Preferences   RoutePreferences `json:"preferences" db:"preferences"`
	Status        string           `json:"status" db:"status"`
	SharedWith    ShareList        `json:"shared_with" db:"shared_with"`
	Analytics     RouteAnalytics   `json:"analytics" db:"analytics"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// IsAccessibleTo reports whether the user owns the route or it was shared
// with them.
func (r *StoredRoute) IsAccessibleTo(userID uuid.UUID) bool {
	if r.UserID == userID {
		return true
	}
	for _, share := range r.SharedWith {
		if share.UserID == userID {
			return true
		}
	}
	return false
}

// IsOwnedBy reports whether the user owns the route
func (r *StoredRoute) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

// RouteStats are the derived metrics for a single route
type RouteStats struct {
	TotalDistance     float64 `json:"total_distance"`
	TotalDuration     float64 `json:"total_duration"`
	NumberOfWaypoints int     `json:"number_of_waypoints"`
	AverageSpeed      float64 `json:"average_speed"` // km/h
}

// CalculateStats derives the route metrics from the stored document
func (r *StoredRoute) CalculateStats() RouteStats {
	stats := RouteStats{
		TotalDistance:     r.RouteData.Properties.Distance,
		TotalDuration:     r.RouteData.Properties.Duration,
		NumberOfWaypoints: len(r.Waypoints),
	}
	if r.RouteData.Properties.Duration > 0 {
		stats.AverageSpeed = (r.RouteData.Properties.Distance / 1000) / (r.RouteData.Properties.Duration / 3600)
	}
	return stats
}
