// Package directions talks to the external directions and geocoding HTTP
// services. All routing computation is delegated to them; no retries are
// attempted, a failed request surfaces to the caller as a typed error.
package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"skyroute/internal/geo"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type ClientOptions struct {
	Timeout time.Duration
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout: 7 * time.Second,
	}
}

func NewClient(baseURL, apiKey string, options ...ClientOptions) *Client {
	opts := DefaultClientOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Directions requests a single route between two points for the given
// profile. A non-2xx status yields a *StatusError and an empty feature set
// yields ErrNoRoute.
func (c *Client) Directions(ctx context.Context, from, to geo.Coordinate, profile Profile) (*Route, error) {
	if !profile.IsValid() {
		return nil, fmt.Errorf("invalid routing profile %q", profile)
	}

	reqURL, err := url.Parse(fmt.Sprintf("%s/directions/%s", c.baseURL, profile))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("api_key", c.apiKey)
	query.Set("start", fmt.Sprintf("%f,%f", from.Lon, from.Lat))
	query.Set("end", fmt.Sprintf("%f,%f", to.Lon, to.Lat))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode}
	}

	var collection featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(collection.Features) == 0 {
		return nil, ErrNoRoute
	}

	return collection.Features[0].toRoute(), nil
}

// Traffic requests the live congestion overlay for a route geometry.
func (c *Client) Traffic(ctx context.Context, geometry []geo.Coordinate) (*TrafficData, error) {
	reqURL, err := url.Parse(c.baseURL + "/traffic")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("api_key", c.apiKey)
	reqURL.RawQuery = query.Encode()

	coords := make([][2]float64, len(geometry))
	for i, c := range geometry {
		coords[i] = [2]float64{c.Lon, c.Lat}
	}

	body, err := json.Marshal(map[string]any{"coordinates": coords})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode}
	}

	var data struct {
		Segments []TrafficSegment `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &TrafficData{
		LastUpdated: time.Now(),
		Segments:    data.Segments,
	}, nil
}
