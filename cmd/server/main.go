package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockcast/internal/api"
	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/pipeline"
	"github.com/andresuchdata/stockcast/internal/report"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/scheduler"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/andresuchdata/stockcast/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetFormat(cfg.Server.LogFormat)
	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		logger.SetLevel("info")
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db.DB.DB); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Initialize cache
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	ttl := cache.TTL(cfg.Cache)

	// Initialize engine and services
	loc := cfg.Forecast.Location()
	engine := forecast.NewEngine(
		forecast.NewDefaultRegistry(),
		forecast.WithClock(func() time.Time { return time.Now().In(loc) }),
		forecast.WithWeekStart(cfg.Forecast.WeekStart),
		forecast.WithLogger(logger.Component("forecast")),
	)

	forecastService := service.NewForecastService(
		engine,
		postgres.NewProductRepository(db),
		postgres.NewSalesRepository(db),
		postgres.NewTemplateRepository(db),
		cfg.Forecast,
	).
		WithCache(cache.NewForecastCache(redisClient, ttl), cache.NewOverviewCache(redisClient, ttl)).
		WithRunStore(pipeline.NewRepository(db.DB))

	if _, err := forecastService.LoadTemplates(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load seasonal templates")
	}

	// Initialize report storage
	var objectStore storage.ObjectStorage = storage.NewLocalStorage(cfg.App.ExportDir)
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		objectStore = s3
	}
	publisher := report.NewPublisher(objectStore)

	// Initialize scheduler
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(cfg.Scheduler, loc, forecastService, publisher, cache.NewLocker(redisClient))
		if err := sched.Start(); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{ForecastService: forecastService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Log.Warn().Msg("Scheduled job still running at shutdown")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
