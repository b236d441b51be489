package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cfbtracker/backend/internal/attendance"
	"cfbtracker/backend/internal/cache"
	"cfbtracker/backend/internal/client"
	"cfbtracker/backend/internal/config"
	"cfbtracker/backend/internal/importer"
	"cfbtracker/backend/internal/migrate"
	"cfbtracker/backend/internal/repository"
	"cfbtracker/backend/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Starting college football tracker worker")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize provider client
	cfbClient := client.NewClient(
		cfg.CFBDataBaseURL,
		cfg.CFBDataAPIKey,
		cfg.CFBDataTimeout,
	)
	log.Info().Str("base_url", cfg.CFBDataBaseURL).Msg("Provider client initialized")

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Bring the schema up to date before anything touches it
	if err := migrate.Run(ctx, db.Pool, cfg.DatabaseDSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	// Initialize Redis cache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
		log.Info().Msg("Redis cache connected")
	}

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	// Create and start scheduler
	imp := importer.New(cfbClient, importer.NewStore(db), cfg.ImportMaxRetries)
	attendanceSvc := attendance.NewService(
		db.Attendance,
		redisCache,
		time.Duration(cfg.CacheTTLStats)*time.Second,
	)
	sched := scheduler.NewScheduler(cfg, imp, attendanceSvc)

	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	if cfg.EnableScheduler {
		sched.Stop()
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures zerolog for the whole process
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
