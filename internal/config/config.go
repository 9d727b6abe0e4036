package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Env string

const (
	EnvProd Env = "prod"
	EnvDev  Env = "dev"
)

func (e Env) IsValid() bool {
	switch e {
	case EnvProd, EnvDev:
		return true
	}
	return false
}

// Config holds the navigation service settings.
type Config struct {
	ServerHost string `env:"SERVER_HOST"`
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	RedisHost            string `env:"REDIS_HOST"`
	RedisPort            string `env:"REDIS_PORT" envDefault:"6379"`
	RedisAdvisoryChannel string `env:"REDIS_ADVISORY_CHANNEL" envDefault:"traffic:advisories"`

	DirectionsBaseURL string `env:"DIRECTIONS_BASE_URL"`
	DirectionsAPIKey  string `env:"DIRECTIONS_API_KEY"`
	GeocodeBaseURL    string `env:"GEOCODE_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`

	Env Env `env:"ENV" envDefault:"prod"`
}

func New() (*Config, error) {
	// A missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Env.IsValid() {
		return nil, fmt.Errorf("invalid env variable (must be 'prod' or 'dev')")
	}
	if cfg.DirectionsBaseURL == "" {
		return nil, fmt.Errorf("DIRECTIONS_BASE_URL is required")
	}
	return &cfg, nil
}

// APIConfig holds the account and route-storage service settings.
type APIConfig struct {
	Port        string `env:"API_PORT" envDefault:"8081"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret      string `env:"JWT_SECRET"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	BcryptCost     int      `env:"BCRYPT_COST" envDefault:"10"`

	DirectionsBaseURL string `env:"DIRECTIONS_BASE_URL"`
	DirectionsAPIKey  string `env:"DIRECTIONS_API_KEY"`

	Env Env `env:"ENV" envDefault:"prod"`
}

func NewAPI() (*APIConfig, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[APIConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Env.IsValid() {
		return nil, fmt.Errorf("invalid env variable (must be 'prod' or 'dev')")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &cfg, nil
}
