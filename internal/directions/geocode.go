package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const geocodeLimit = 5

// Place is one geocoding candidate for a free-text query.
type Place struct {
	DisplayName string  `json:"display_name"`
	Lon         float64 `json:"lon,string"`
	Lat         float64 `json:"lat,string"`
}

// Geocoder resolves free-text addresses into coordinate candidates.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
}

func NewGeocoder(baseURL string, options ...ClientOptions) *Geocoder {
	opts := DefaultClientOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &Geocoder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Search returns up to five candidates for the query. A non-2xx status
// yields a *GeocodeError.
func (g *Geocoder) Search(ctx context.Context, query string) ([]Place, error) {
	reqURL, err := url.Parse(g.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", geocodeLimit))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &GeocodeError{Status: resp.StatusCode}
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return places, nil
}
