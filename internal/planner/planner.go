// Package planner turns a pair of endpoints into a renderable route plan:
// the fetched route, its polyline layers, formatted summary fields, the flat
// instruction list and the opening camera placement.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"skyroute/internal/directions"
	"skyroute/internal/format"
	"skyroute/internal/geo"
	"skyroute/internal/navigation"
)

// Polyline layer styling: a wide glow outline under a narrow core line.
const (
	glowWidth = 8.0
	glowColor = "#4CAF50"
	glowPower = 0.2

	coreWidth = 4.0
	coreColor = "#81C784"
)

// PolylineLayer is one of the stacked lines drawn over the route geometry.
type PolylineLayer struct {
	Positions     []geo.Coordinate `json:"positions"`
	Width         float64          `json:"width"`
	Color         string           `json:"color"`
	GlowPower     float64          `json:"glow_power,omitempty"`
	ClampToGround bool             `json:"clamp_to_ground"`
}

// Summary carries the formatted route totals shown in the side panel.
type Summary struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
	FuelCost string `json:"fuel_cost"`
}

// Plan is a complete renderable route. It replaces any previously installed
// plan wholesale; there is at most one active plan per session.
type Plan struct {
	Route        *directions.Route     `json:"route"`
	Layers       []PolylineLayer       `json:"layers"`
	Summary      Summary               `json:"summary"`
	Instructions []string              `json:"instructions"`
	Camera       navigation.CameraPose `json:"camera"`
}

type Planner struct {
	client *directions.Client
	logger *slog.Logger
}

func New(client *directions.Client, logger *slog.Logger) *Planner {
	return &Planner{
		client: client,
		logger: logger,
	}
}

// CreateRoute requests a route between the two endpoints and builds its
// plan. A missing endpoint fails before any request is issued; routing
// failures pass through as the client's typed errors. No retry is attempted.
func (p *Planner) CreateRoute(ctx context.Context, from, to *geo.Coordinate, profile directions.Profile) (*Plan, error) {
	if from == nil || to == nil {
		return nil, directions.ErrMissingEndpoints
	}

	route, err := p.client.Directions(ctx, *from, *to, profile)
	if err != nil {
		return nil, fmt.Errorf("requesting directions: %w", err)
	}

	p.logger.Debug("route fetched",
		"vertices", len(route.Geometry),
		"steps", len(route.Steps),
		"distance", route.Summary.Distance,
	)

	return p.Compose(route), nil
}

// Compose builds the renderable plan for an already fetched route. Used both
// after a fresh directions request and when a cached session's route is
// restored without re-requesting it.
func (p *Planner) Compose(route *directions.Route) *Plan {
	instructions := make([]string, len(route.Steps))
	for i, step := range route.Steps {
		instructions[i] = step.Instruction
	}

	return &Plan{
		Route: route,
		Layers: []PolylineLayer{
			{
				Positions:     route.Geometry,
				Width:         glowWidth,
				Color:         glowColor,
				GlowPower:     glowPower,
				ClampToGround: true,
			},
			{
				Positions:     route.Geometry,
				Width:         coreWidth,
				Color:         coreColor,
				ClampToGround: true,
			},
		},
		Summary: Summary{
			Distance: format.Distance(route.Summary.Distance),
			Duration: format.Duration(route.Summary.Duration),
			FuelCost: fmt.Sprintf("$%.2f", format.FuelCost(route.Summary.Distance)),
		},
		Instructions: instructions,
		Camera:       navigation.OverviewPose(route.Geometry),
	}
}
