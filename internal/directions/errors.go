package directions

import (
	"errors"
	"fmt"
)

// ErrMissingEndpoints is returned before any request is issued when one of
// the two route endpoints is absent.
var ErrMissingEndpoints = errors.New("start and end locations are required")

// ErrNoRoute is returned when the directions service answers successfully
// but with an empty feature set.
var ErrNoRoute = errors.New("no route found between the selected locations")

// StatusError is a non-2xx answer from the directions service. The failure
// cause is carried as the HTTP status at construction time so callers never
// have to re-parse error text.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directions service returned status %d", e.Status)
}

// Advice returns the user-facing explanation for the failure.
func (e *StatusError) Advice() string {
	switch e.Status {
	case 400:
		return "The selected locations are too far apart or not connected by road."
	case 401:
		return "Invalid API key. Please check your routing API key."
	case 429:
		return "Too many requests. Please try again in a few minutes."
	default:
		return "Please try again."
	}
}

// GeocodeError is a non-2xx answer from the geocoding service. Callers
// suppress the submit action instead of alerting.
type GeocodeError struct {
	Status int
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocoding service returned status %d", e.Status)
}
