package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skyroute/internal/models"
)

// RouteRepository handles stored route database operations
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{
		db: db,
	}
}

// CreateRoute inserts a new route, assigning its ID and timestamps
func (r *RouteRepository) CreateRoute(route *models.StoredRoute) error {
	route.ID = uuid.New()
	route.Status = models.RouteStatusActive
	route.CreatedAt = time.Now()
	route.UpdatedAt = route.CreatedAt

	query := `
		INSERT INTO routes (
			id, user_id, name, start_location, end_location, waypoints,
			route_data, traffic_data, preferences, status, shared_with,
			analytics, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(
		query,
		route.ID,
		route.UserID,
		route.Name,
		route.StartLocation,
		route.EndLocation,
		route.Waypoints,
		route.RouteData,
		route.TrafficData,
		route.Preferences,
		route.Status,
		route.SharedWith,
		route.Analytics,
		route.CreatedAt,
		route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// GetRouteByID fetches a route by ID
func (r *RouteRepository) GetRouteByID(id uuid.UUID) (*models.StoredRoute, error) {
	var route models.StoredRoute
	query := `SELECT * FROM routes WHERE id = $1`
	err := r.db.Get(&route, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// ListByUser returns the user's routes, newest first
func (r *RouteRepository) ListByUser(userID uuid.UUID) ([]models.StoredRoute, error) {
	var routes []models.StoredRoute
	query := `SELECT * FROM routes WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&routes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// ListSharedWith returns routes shared with the user
func (r *RouteRepository) ListSharedWith(userID uuid.UUID) ([]models.StoredRoute, error) {
	match, err := json.Marshal([]map[string]string{{"user_id": userID.String()}})
	if err != nil {
		return nil, fmt.Errorf("failed to build share filter: %w", err)
	}

	var routes []models.StoredRoute
	query := `SELECT * FROM routes WHERE shared_with @> $1 ORDER BY created_at DESC`
	if err := r.db.Select(&routes, query, match); err != nil {
		return nil, fmt.Errorf("failed to list shared routes: %w", err)
	}
	return routes, nil
}

// UpdateRoute writes the route's mutable fields
func (r *RouteRepository) UpdateRoute(route *models.StoredRoute) error {
	route.UpdatedAt = time.Now()
	query := `
		UPDATE routes SET
			name = $1, start_location = $2, end_location = $3, waypoints = $4,
			route_data = $5, preferences = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.Exec(
		query,
		route.Name,
		route.StartLocation,
		route.EndLocation,
		route.Waypoints,
		route.RouteData,
		route.Preferences,
		route.Status,
		route.UpdatedAt,
		route.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}
	return nil
}

// UpdateShares replaces the route's share list
func (r *RouteRepository) UpdateShares(id uuid.UUID, shares models.ShareList) error {
	query := `UPDATE routes SET shared_with = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(query, shares, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update shares: %w", err)
	}
	return nil
}

// UpdateAnalytics replaces the route's analytics counters
func (r *RouteRepository) UpdateAnalytics(id uuid.UUID, analytics models.RouteAnalytics) error {
	query := `UPDATE routes SET analytics = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(query, analytics, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update analytics: %w", err)
	}
	return nil
}

// UpdateStatus sets the route status
func (r *RouteRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE routes SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(query, status, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// UpdateTraffic stores a fresh traffic snapshot for the route
func (r *RouteRepository) UpdateTraffic(id uuid.UUID, traffic *models.TrafficInfo) error {
	query := `UPDATE routes SET traffic_data = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(query, traffic, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update traffic data: %w", err)
	}
	return nil
}

// DeleteRoute removes the route
func (r *RouteRepository) DeleteRoute(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountRoutes returns the total number of routes
func (r *RouteRepository) CountRoutes() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM routes`); err != nil {
		return 0, fmt.Errorf("failed to count routes: %w", err)
	}
	return count, nil
}

// CountRoutesByStatus returns the number of routes in the given status
func (r *RouteRepository) CountRoutesByStatus(status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM routes WHERE status = $1`
	if err := r.db.Get(&count, query, status); err != nil {
		return 0, fmt.Errorf("failed to count routes by status: %w", err)
	}
	return count, nil
}

// AverageCompletedDuration returns the mean duration, in seconds, of
// completed routes. Zero when none are completed.
func (r *RouteRepository) AverageCompletedDuration() (float64, error) {
	var avg sql.NullFloat64
	query := `
		SELECT AVG((route_data->'properties'->>'duration')::float)
		FROM routes WHERE status = $1
	`
	if err := r.db.Get(&avg, query, models.RouteStatusCompleted); err != nil {
		return 0, fmt.Errorf("failed to get average duration: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// PopularRoutes returns the most viewed routes
func (r *RouteRepository) PopularRoutes(limit int) ([]models.StoredRoute, error) {
	var routes []models.StoredRoute
	query := `
		SELECT * FROM routes
		ORDER BY COALESCE((analytics->>'views')::int, 0) DESC
		LIMIT $1
	`
	if err := r.db.Select(&routes, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get popular routes: %w", err)
	}
	return routes, nil
}
