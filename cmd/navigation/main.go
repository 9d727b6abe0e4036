package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"skyroute/internal/api"
	"skyroute/internal/cache"
	"skyroute/internal/config"
	"skyroute/internal/directions"
	"skyroute/internal/planner"
	"skyroute/internal/traffic"
	"skyroute/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.New()
	if err != nil {
		return err
	}

	var loggerOpts slog.HandlerOptions
	if conf.Env == config.EnvDev {
		loggerOpts = slog.HandlerOptions{Level: slog.LevelDebug}
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &loggerOpts)
	logger := slog.New(jsonHandler)

	redisClient := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(conf.RedisHost, conf.RedisPort)})
	sessionCache := cache.NewRedisSessionCache(redisClient, 30*time.Minute)

	directionsClient := directions.NewClient(conf.DirectionsBaseURL, conf.DirectionsAPIKey)
	geocoder := directions.NewGeocoder(conf.GeocodeBaseURL)
	routePlanner := planner.New(directionsClient, logger)

	wsManager := ws.NewManager(ctx, logger, sessionCache, routePlanner)
	go wsManager.Start()

	multicaster := traffic.NewMulticaster(wsManager)
	sub := traffic.NewSubscriber(logger, redisClient, conf.RedisAdvisoryChannel, multicaster)
	go func() {
		if err := sub.Start(ctx); err != nil {
			logger.Error("advisory subscriber stopped", "error", err)
		}
	}()

	server := api.NewServer(conf, wsManager, geocoder, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	wsManager.Shutdown()
	return nil
}
