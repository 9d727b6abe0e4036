package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skyroute/internal/database"
	"skyroute/internal/middleware"
	"skyroute/internal/models"
)

// AnalyticsHandler serves usage aggregates
type AnalyticsHandler struct {
	users  *database.UserRepository
	routes *database.RouteRepository
	logger *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(users *database.UserRepository, routes *database.RouteRepository, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		users:  users,
		routes: routes,
		logger: logger,
	}
}

// Overall returns system-wide aggregates. Admin only, gated by middleware.
func (h *AnalyticsHandler) Overall(c *gin.Context) {
	totalUsers, err := h.users.CountUsers()
	if err != nil {
		h.fail(c, err)
		return
	}
	totalRoutes, err := h.routes.CountRoutes()
	if err != nil {
		h.fail(c, err)
		return
	}
	activeRoutes, err := h.routes.CountRoutesByStatus(models.RouteStatusActive)
	if err != nil {
		h.fail(c, err)
		return
	}
	completedRoutes, err := h.routes.CountRoutesByStatus(models.RouteStatusCompleted)
	if err != nil {
		h.fail(c, err)
		return
	}

	completionRate := 0.0
	if totalRoutes > 0 {
		completionRate = float64(completedRoutes) / float64(totalRoutes) * 100
	}

	averageDuration, err := h.routes.AverageCompletedDuration()
	if err != nil {
		h.fail(c, err)
		return
	}

	popularRoutes, err := h.routes.PopularRoutes(5)
	if err != nil {
		h.fail(c, err)
		return
	}

	userGrowth, err := h.users.UserGrowth()
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":      totalUsers,
		"total_routes":     totalRoutes,
		"active_routes":    activeRoutes,
		"completed_routes": completedRoutes,
		"completion_rate":  completionRate,
		"average_duration": averageDuration,
		"popular_routes":   popularRoutes,
		"user_growth":      userGrowth,
	})
}

type destinationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type routeHistoryEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// User returns the caller's own usage statistics
func (h *AnalyticsHandler) User(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	routes, err := h.routes.ListByUser(userCtx.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	totalRoutes := len(routes)
	completedRoutes := 0
	totalDistance := 0.0
	totalDuration := 0.0
	destinations := make(map[string]int)

	for _, route := range routes {
		if route.Status == models.RouteStatusCompleted {
			completedRoutes++
		}
		totalDistance += route.RouteData.Properties.Distance
		totalDuration += route.RouteData.Properties.Duration
		if route.EndLocation.Name != "" {
			destinations[route.EndLocation.Name]++
		}
	}

	completionRate := 0.0
	if totalRoutes > 0 {
		completionRate = float64(completedRoutes) / float64(totalRoutes) * 100
	}

	frequent := make([]destinationCount, 0, len(destinations))
	for name, count := range destinations {
		frequent = append(frequent, destinationCount{Name: name, Count: count})
	}
	sort.Slice(frequent, func(i, j int) bool {
		if frequent[i].Count != frequent[j].Count {
			return frequent[i].Count > frequent[j].Count
		}
		return frequent[i].Name < frequent[j].Name
	})
	if len(frequent) > 5 {
		frequent = frequent[:5]
	}

	// ListByUser is already newest first.
	history := make([]routeHistoryEntry, 0, 10)
	for _, route := range routes {
		if len(history) == 10 {
			break
		}
		history = append(history, routeHistoryEntry{
			ID:            route.ID.String(),
			Name:          route.Name,
			StartLocation: route.StartLocation.Name,
			EndLocation:   route.EndLocation.Name,
			Status:        route.Status,
			CreatedAt:     route.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_routes":          totalRoutes,
		"completed_routes":      completedRoutes,
		"completion_rate":       completionRate,
		"total_distance":        totalDistance,
		"total_duration":        totalDuration,
		"frequent_destinations": frequent,
		"route_history":         history,
	})
}

// Route returns usage counters for a single route the caller can access
func (h *AnalyticsHandler) Route(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid route id",
		})
		return
	}

	route, err := h.routes.GetRouteByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Route not found",
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if !route.IsAccessibleTo(userCtx.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Access denied",
		})
		return
	}

	stats := route.CalculateStats()
	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"views":               route.Analytics.Views,
			"completions":         route.Analytics.Completions,
			"average_duration":    route.Analytics.AverageDuration,
			"last_used":           route.Analytics.LastUsed,
			"shared_with":         len(route.SharedWith),
			"total_distance":      stats.TotalDistance,
			"total_duration":      stats.TotalDuration,
			"number_of_waypoints": stats.NumberOfWaypoints,
			"average_speed":       stats.AverageSpeed,
		},
		"traffic_data": route.TrafficData,
	})
}

type trackRequest struct {
	Event    string         `json:"event" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}

// Track records a client-side activity event. The event is logged, not
// stored; dashboards read the server logs.
func (h *AnalyticsHandler) Track(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  userCtx.UserID,
		"event":    req.Event,
		"metadata": req.Metadata,
	}).Info("Activity tracked")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AnalyticsHandler) fail(c *gin.Context, err error) {
	h.logger.WithError(err).Error("Analytics query failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "Error fetching analytics",
	})
}
