package ws

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyroute/internal/directions"
	"skyroute/internal/navigation"
)

func TestPositionFeedDelivery(t *testing.T) {
	feed := &positionFeed{}

	var got []navigation.Sample
	sub, err := feed.Watch(func(s navigation.Sample) { got = append(got, s) }, nil)
	require.NoError(t, err)

	feed.deliver(navigation.Sample{Lon: 1, Lat: 2})
	feed.deliver(navigation.Sample{Lon: 3, Lat: 4})
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[1].Lon)

	sub.Cancel()
	feed.deliver(navigation.Sample{Lon: 5, Lat: 6})
	assert.Len(t, got, 2, "cancelled watcher must not receive samples")

	// The last sample is remembered even without a watcher.
	last := feed.Last()
	require.NotNil(t, last)
	assert.Equal(t, 5.0, last.Lon)
}

func TestPositionFeedError(t *testing.T) {
	feed := &positionFeed{}

	var got error
	_, err := feed.Watch(func(navigation.Sample) {}, func(e error) { got = e })
	require.NoError(t, err)

	feed.fail(errors.New("permission denied"))
	require.Error(t, got)
	assert.Equal(t, "permission denied", got.Error())
}

func TestRouteAlertMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"missing endpoints",
			directions.ErrMissingEndpoints,
			"Please select both starting point and destination",
		},
		{
			"no route",
			fmt.Errorf("creating route: %w", directions.ErrNoRoute),
			"Error creating route. No route found between the selected locations.",
		},
		{
			"rate limited",
			&directions.StatusError{Status: http.StatusTooManyRequests},
			"Error creating route. " + (&directions.StatusError{Status: http.StatusTooManyRequests}).Advice(),
		},
		{
			"unknown",
			errors.New("boom"),
			"Error creating route. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeAlert(tt.err))
		})
	}
}
