package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocoderSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "tour eiffel", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			{"display_name": "Tour Eiffel, Paris", "lon": "2.2945", "lat": "48.8584"},
			{"display_name": "Avenue de la Tour-Eiffel", "lon": "2.2950", "lat": "48.8590"}
		]`))
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	places, err := geocoder.Search(context.Background(), "tour eiffel")
	require.NoError(t, err)

	require.Len(t, places, 2)
	assert.Equal(t, "Tour Eiffel, Paris", places[0].DisplayName)
	assert.InDelta(t, 2.2945, places[0].Lon, 1e-9)
	assert.InDelta(t, 48.8584, places[0].Lat, 1e-9)
}

func TestGeocoderSearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	_, err := geocoder.Search(context.Background(), "nowhere")

	var geocodeErr *GeocodeError
	require.ErrorAs(t, err, &geocodeErr)
	assert.Equal(t, http.StatusServiceUnavailable, geocodeErr.Status)
}

func TestGeocoderEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	places, err := geocoder.Search(context.Background(), "zzzzzz")
	require.NoError(t, err)
	assert.Empty(t, places)
}
