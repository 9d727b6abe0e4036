package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"skyroute/internal/config"
	"skyroute/internal/directions"
	"skyroute/internal/ws"
)

type Server struct {
	Config           *config.Config
	WebsocketManager *ws.Manager
	Geocoder         *directions.Geocoder
	logger           *slog.Logger
}

func NewServer(config *config.Config, manager *ws.Manager, geocoder *directions.Geocoder, logger *slog.Logger) *Server {
	return &Server{
		Config:           config,
		WebsocketManager: manager,
		Geocoder:         geocoder,
		logger:           logger,
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate;")
	if _, err := w.Write([]byte("Navigation server is started.")); err != nil {
		s.logger.Error(fmt.Sprintf("Error writing response: %v", err))
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /geocode", s.geocodeHandler())
	mux.Handle("GET /navigation", s.wsHandler())

	server := &http.Server{
		Addr:    net.JoinHostPort(s.Config.ServerHost, s.Config.ServerPort),
		Handler: mux,
	}

	go func() {
		s.logger.Info("Navigation server is running", "port", s.Config.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Navigation server failed to listen and serve", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Navigation server failed to shutdown", "error", err)
		}
	}()

	wg.Wait()
	return nil
}
