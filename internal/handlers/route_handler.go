package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skyroute/internal/database"
	"skyroute/internal/directions"
	"skyroute/internal/geo"
	"skyroute/internal/middleware"
	"skyroute/internal/models"
)

// RouteHandler serves the stored-route CRUD endpoints. Route documents are
// fetched from the directions service server-side at creation time, so a
// stored route is always complete and renderable.
type RouteHandler struct {
	routes     *database.RouteRepository
	directions *directions.Client
	logger     *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routes *database.RouteRepository, client *directions.Client, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routes:     routes,
		directions: client,
		logger:     logger,
	}
}

type createRouteRequest struct {
	Name          string                  `json:"name" binding:"required"`
	StartLocation models.Location         `json:"start_location" binding:"required"`
	EndLocation   models.Location         `json:"end_location" binding:"required"`
	Waypoints     []models.Waypoint       `json:"waypoints"`
	Preferences   models.RoutePreferences `json:"preferences"`
}

// Create computes the route via the directions service and stores it
func (h *RouteHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	profile := directions.Profile(req.Preferences.Profile)
	if profile == "" {
		profile = directions.ProfileDrivingCar
		req.Preferences.Profile = string(profile)
	}
	if !profile.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Unknown routing profile",
		})
		return
	}

	from := geo.Coordinate{Lon: req.StartLocation.Coordinates[0], Lat: req.StartLocation.Coordinates[1]}
	to := geo.Coordinate{Lon: req.EndLocation.Coordinates[0], Lat: req.EndLocation.Coordinates[1]}

	fetched, err := h.directions.Directions(c.Request.Context(), from, to, profile)
	if err != nil {
		if errors.Is(err, directions.ErrNoRoute) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "no_route",
				"message": "Could not find route",
			})
			return
		}
		h.logger.WithError(err).Error("Directions request failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "routing_failed",
			"message": "Error fetching route",
		})
		return
	}

	route := &models.StoredRoute{
		UserID:        userCtx.UserID,
		Name:          req.Name,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Waypoints:     req.Waypoints,
		RouteData:     toRouteDocument(fetched),
		Preferences:   req.Preferences,
	}

	if err := h.routes.CreateRoute(route); err != nil {
		h.logger.WithError(err).Error("Failed to create route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error creating route",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// List returns the caller's routes, newest first
func (h *RouteHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	routes, err := h.routes.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list routes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error fetching routes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// Shared returns routes other users shared with the caller
func (h *RouteHandler) Shared(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	routes, err := h.routes.ListSharedWith(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list shared routes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error fetching shared routes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// Get returns a single route and records the view
func (h *RouteHandler) Get(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsAccessibleTo(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	now := time.Now()
	route.Analytics.Views++
	route.Analytics.LastUsed = &now
	if err := h.routes.UpdateAnalytics(route.ID, route.Analytics); err != nil {
		h.logger.WithError(err).Warn("Failed to record route view")
	}

	c.JSON(http.StatusOK, gin.H{"route": route})
}

type updateRouteRequest struct {
	Name        *string                  `json:"name"`
	Status      *string                  `json:"status"`
	Preferences *models.RoutePreferences `json:"preferences"`
}

// Update modifies the route's mutable fields, owner only
func (h *RouteHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsOwnedBy(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	var req updateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.Status != nil {
		switch *req.Status {
		case models.RouteStatusActive, models.RouteStatusCompleted, models.RouteStatusCancelled:
			route.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Unknown route status",
			})
			return
		}
	}
	if req.Preferences != nil {
		route.Preferences = *req.Preferences
	}

	if err := h.routes.UpdateRoute(route); err != nil {
		h.logger.WithError(err).Error("Failed to update route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error updating route",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": route})
}

type shareRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Permissions string    `json:"permissions"`
}

// Share grants another user access to the route, owner only
func (h *RouteHandler) Share(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsOwnedBy(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if req.Permissions == "" {
		req.Permissions = models.PermissionView
	}
	if req.Permissions != models.PermissionView && req.Permissions != models.PermissionEdit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Unknown permission",
		})
		return
	}

	// Sharing twice with the same user is a no-op.
	for _, share := range route.SharedWith {
		if share.UserID == req.UserID {
			c.JSON(http.StatusOK, gin.H{"message": "Route shared successfully"})
			return
		}
	}

	route.SharedWith = append(route.SharedWith, models.Share{
		UserID:      req.UserID,
		Permissions: req.Permissions,
	})
	if err := h.routes.UpdateShares(route.ID, route.SharedWith); err != nil {
		h.logger.WithError(err).Error("Failed to share route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error sharing route",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route shared successfully"})
}

// Traffic fetches fresh congestion data for the route and caches it.
// Gated to paid tiers by middleware.
func (h *RouteHandler) Traffic(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsAccessibleTo(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	geometry := make([]geo.Coordinate, len(route.RouteData.Geometry))
	for i, pair := range route.RouteData.Geometry {
		geometry[i] = geo.Coordinate{Lon: pair[0], Lat: pair[1]}
	}

	data, err := h.directions.Traffic(c.Request.Context(), geometry)
	if err != nil {
		h.logger.WithError(err).Error("Traffic request failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "traffic_failed",
			"message": "Error fetching traffic data",
		})
		return
	}

	traffic := toTrafficInfo(data)
	if err := h.routes.UpdateTraffic(route.ID, traffic); err != nil {
		h.logger.WithError(err).Warn("Failed to cache traffic data")
	}

	c.JSON(http.StatusOK, gin.H{"traffic_data": traffic})
}

// Complete marks the route completed and counts the completion, owner only
func (h *RouteHandler) Complete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsOwnedBy(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	route.Analytics.Completions++
	if err := h.routes.UpdateStatus(route.ID, models.RouteStatusCompleted); err != nil {
		h.logger.WithError(err).Error("Failed to complete route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error completing route",
		})
		return
	}
	if err := h.routes.UpdateAnalytics(route.ID, route.Analytics); err != nil {
		h.logger.WithError(err).Warn("Failed to count completion")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route completed"})
}

// Delete removes the route, owner only
func (h *RouteHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	route, ok := h.loadRoute(c)
	if !ok {
		return
	}
	if !route.IsOwnedBy(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	if err := h.routes.DeleteRoute(route.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error deleting route",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// loadRoute parses the id parameter and fetches the route, writing the
// error response itself when either fails.
func (h *RouteHandler) loadRoute(c *gin.Context) (*models.StoredRoute, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid route id",
		})
		return nil, false
	}

	route, err := h.routes.GetRouteByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Route not found",
		})
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch route")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error fetching route",
		})
		return nil, false
	}
	return route, true
}

func toRouteDocument(route *directions.Route) models.RouteDocument {
	doc := models.RouteDocument{
		Geometry: make([][2]float64, len(route.Geometry)),
		Properties: models.RouteProperties{
			Distance: route.Summary.Distance,
			Duration: route.Summary.Duration,
			Steps:    make([]models.RouteStep, len(route.Steps)),
		},
	}
	for i, p := range route.Geometry {
		doc.Geometry[i] = [2]float64{p.Lon, p.Lat}
	}
	for i, s := range route.Steps {
		doc.Properties.Steps[i] = models.RouteStep{
			Distance:    s.Distance,
			Duration:    s.Duration,
			Instruction: s.Instruction,
			Maneuver:    [2]float64{s.Maneuver.Lon, s.Maneuver.Lat},
		}
	}
	return doc
}

func toTrafficInfo(data *directions.TrafficData) *models.TrafficInfo {
	info := &models.TrafficInfo{
		LastUpdated: time.Now(),
		Segments:    make([]models.TrafficSegment, len(data.Segments)),
	}
	for i, seg := range data.Segments {
		coords := make([][2]float64, len(seg.Coordinates))
		for j, p := range seg.Coordinates {
			coords[j] = [2]float64{p.Lon, p.Lat}
		}
		info.Segments[i] = models.TrafficSegment{
			Coordinates: coords,
			Congestion:  seg.Congestion,
			Speed:       seg.Speed,
		}
	}
	return info
}
