package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/matheodrd/httphelper/handler"

	"skyroute/internal/directions"
)

func (s *Server) wsHandler() http.HandlerFunc {
	return handler.Handler(func(w http.ResponseWriter, r *http.Request) error {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			return handler.NewErrWithStatus(http.StatusBadRequest, errors.New("missing user_id"))
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return handler.NewErrWithStatus(http.StatusInternalServerError, fmt.Errorf("websocket accept: %w", err))
		}

		s.WebsocketManager.HandleNewConnection(userID, conn)
		return nil
	})
}

// geocodeHandler proxies address search. An upstream failure maps to 502 so
// the caller can degrade address input to coordinate-only entry.
func (s *Server) geocodeHandler() http.HandlerFunc {
	return handler.Handler(func(w http.ResponseWriter, r *http.Request) error {
		query := r.URL.Query().Get("q")
		if query == "" {
			return handler.NewErrWithStatus(http.StatusBadRequest, errors.New("missing q"))
		}

		places, err := s.Geocoder.Search(r.Context(), query)
		if err != nil {
			var geoErr *directions.GeocodeError
			if errors.As(err, &geoErr) {
				s.logger.Warn("geocoding upstream failed", "status", geoErr.Status)
				return handler.NewErrWithStatus(http.StatusBadGateway, err)
			}
			return handler.NewErrWithStatus(http.StatusInternalServerError, err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(places); err != nil {
			return fmt.Errorf("encoding places: %w", err)
		}
		return nil
	})
}
