// Package config loads service configuration from the environment.
//
// Values are read once at startup (optionally from a .env file) into a Config
// struct that is passed by reference to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultShutdownTimeout = 10 * time.Second
)

// Config is the root configuration of the service.
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Catalog   CatalogConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// DatabaseConfig selects the credential store. An empty URL means the
// in-memory store is used.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int
}

// CatalogConfig holds the Spotify Web API credentials and endpoints.
type CatalogConfig struct {
	ClientID      string
	ClientSecret  string
	AccountsURL   string
	APIURL        string
	Timeout       time.Duration
	PlaylistLimit int
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// ShutdownConfig keeps the raw duration strings; use the getters on Config.
type ShutdownConfig struct {
	Timeout             string
	ReadinessDrainDelay string
}

// Load reads the configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "moodtunes-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("ENV", EnvDevelopment),
			Port:    getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			JWTIssuer:  getEnv("JWT_ISSUER", "moodtunes-service"),
			TokenTTL:   getEnvDuration("JWT_TTL", 30*time.Minute),
			BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
		},
		Catalog: CatalogConfig{
			ClientID:      os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret:  os.Getenv("SPOTIFY_CLIENT_SECRET"),
			AccountsURL:   getEnv("SPOTIFY_ACCOUNTS_URL", "https://accounts.spotify.com"),
			APIURL:        getEnv("SPOTIFY_API_URL", "https://api.spotify.com"),
			Timeout:       getEnvDuration("CATALOG_TIMEOUT", 10*time.Second),
			PlaylistLimit: getEnvInt("PLAYLIST_LIMIT", 5),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             getEnv("SHUTDOWN_TIMEOUT", "10s"),
			ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Service.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number in 1..65535, got %q", c.Service.Port))
	}

	if c.Auth.JWTSecret == "" && c.Service.Env != EnvDevelopment {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be in %d..%d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}

	if c.Catalog.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", c.Catalog.Timeout))
	}
	if c.Catalog.PlaylistLimit < 1 || c.Catalog.PlaylistLimit > 50 {
		errs = append(errs, fmt.Errorf("PLAYLIST_LIMIT must be in 1..50, got %d", c.Catalog.PlaylistLimit))
	}

	if c.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.Database.MaxConns))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be in 0..1, got %v", c.Tracing.SampleRate))
	}

	if _, err := time.ParseDuration(c.Shutdown.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if _, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("READINESS_DRAIN_DELAY: %w", err))
	}

	return errors.Join(errs...)
}

// SigningSecret returns the JWT secret. In development an empty secret falls
// back to a fixed value so the service can start without setup.
func (c *Config) SigningSecret() []byte {
	if c.Auth.JWTSecret == "" && c.Service.Env == EnvDevelopment {
		return []byte("dev-secret-change-me")
	}
	return []byte(c.Auth.JWTSecret)
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Shutdown.Timeout)
	if err != nil || d <= 0 {
		return defaultShutdownTimeout
	}
	return d
}

// GetReadinessDrainDelayDuration returns how long /ready reports
// shutting_down before the HTTP server stops accepting requests.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
