package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/moodtunes-service/config"
	"github.com/duynhne/moodtunes-service/internal/catalog"
	database "github.com/duynhne/moodtunes-service/internal/core"
	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/internal/core/repository"
	"github.com/duynhne/moodtunes-service/internal/logger"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
	v1 "github.com/duynhne/moodtunes-service/internal/web/v1"
	"github.com/duynhne/moodtunes-service/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	logger.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using development signing secret")
	}

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Credential store: Postgres when DATABASE_URL is set, memory otherwise.
	var (
		accounts domain.AccountRepository
		pool     *pgxpool.Pool
	)
	if cfg.Database.URL != "" {
		var err error
		pool, err = database.Connect(context.Background(), cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		repo := repository.NewAccountRepository(pool)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to create accounts schema")
		}
		accounts = repo
		log.Info().Msg("Database connection pool established")
	} else {
		accounts = repository.NewMemoryAccountRepository()
		log.Warn().Msg("DATABASE_URL not set, accounts are kept in memory")
	}

	if cfg.Catalog.ClientID == "" || cfg.Catalog.ClientSecret == "" {
		log.Warn().Msg("Spotify credentials not set, playlist lookups will fail with 502")
	}

	tokens := logicv1.NewTokenService(cfg.SigningSecret(), cfg.Auth.JWTIssuer,
		logicv1.WithDefaultTTL(cfg.Auth.TokenTTL))
	authService := logicv1.NewAuthService(accounts, logicv1.NewBcryptHasher(cfg.Auth.BcryptCost), tokens)

	spotify := catalog.New(catalog.Config{
		ClientID:     cfg.Catalog.ClientID,
		ClientSecret: cfg.Catalog.ClientSecret,
		AccountsURL:  cfg.Catalog.AccountsURL,
		APIURL:       cfg.Catalog.APIURL,
		Timeout:      cfg.Catalog.Timeout,
	})
	playlistService := logicv1.NewPlaylistService(spotify, cfg.Catalog.PlaylistLimit)

	handler := v1.NewHandler(authService, playlistService, logicv1.NewSentimentService())

	if cfg.Service.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	var draining atomic.Bool
	r := newRouter(cfg.Service.Name, handler, accounts, &draining)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting moodtunes service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	gracefulShutdown(cfg, srv, &draining, pool, tp)
}

// gracefulShutdown fails readiness, waits out the drain delay, then stops the
// HTTP server, the pool and the tracer in that order within SHUTDOWN_TIMEOUT.
func gracefulShutdown(cfg *config.Config, srv *http.Server, draining *atomic.Bool, pool *pgxpool.Pool, tp interface{ Shutdown(context.Context) error }) {
	draining.Store(true)
	if delay := cfg.GetReadinessDrainDelayDuration(); delay > 0 {
		log.Info().Dur("delay", delay).Msg("Draining before shutdown")
		time.Sleep(delay)
	}

	timeout := cfg.GetShutdownTimeoutDuration()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Info().Dur("timeout", timeout).Msg("Stopping HTTP server")

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server did not stop cleanly")
	}
	if pool != nil {
		pool.Close()
	}
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Tracer flush failed")
		}
	}
	log.Info().Msg("Shutdown complete")
}
