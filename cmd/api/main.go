package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"skyroute/internal/config"
	"skyroute/internal/database"
	"skyroute/internal/directions"
	"skyroute/internal/handlers"
	"skyroute/internal/middleware"
	"skyroute/internal/models"
	"skyroute/pkg/jwt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.NewAPI()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	jwtService := jwt.NewService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	userRepo := database.NewUserRepository(db)
	routeRepo := database.NewRouteRepository(db)
	directionsClient := directions.NewClient(cfg.DirectionsBaseURL, cfg.DirectionsAPIKey)

	authHandler := handlers.NewAuthHandler(userRepo, jwtService, logger, cfg.BcryptCost)
	routeHandler := handlers.NewRouteHandler(routeRepo, directionsClient, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(userRepo, routeRepo, logger)

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthMiddleware(jwtService), authHandler.Me)
			auth.PUT("/preferences", middleware.AuthMiddleware(jwtService), authHandler.UpdatePreferences)
		}

		routes := api.Group("/routes", middleware.AuthMiddleware(jwtService))
		{
			routes.POST("", routeHandler.Create)
			routes.GET("", routeHandler.List)
			routes.GET("/shared", routeHandler.Shared)
			routes.GET("/:id", routeHandler.Get)
			routes.PUT("/:id", routeHandler.Update)
			routes.DELETE("/:id", routeHandler.Delete)
			routes.POST("/:id/share", routeHandler.Share)
			routes.POST("/:id/complete", routeHandler.Complete)
			routes.GET("/:id/traffic",
				middleware.RequireSubscription(userRepo, models.SubscriptionPremium, models.SubscriptionEnterprise),
				routeHandler.Traffic)
		}

		analytics := api.Group("/analytics", middleware.AuthMiddleware(jwtService))
		{
			analytics.GET("/overall", middleware.RequireRole(userRepo, models.RoleAdmin), analyticsHandler.Overall)
			analytics.GET("/user", analyticsHandler.User)
			analytics.GET("/route/:id", analyticsHandler.Route)
			analytics.POST("/track", analyticsHandler.Track)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("API server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("API server forced to shutdown: %v", err)
	}
	logger.Info("API server stopped")
}
