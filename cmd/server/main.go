// Package main is the HTTP entry point for the breast cancer risk service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/api"
	"github.com/epiverse/bcrat/internal/cache"
	"github.com/epiverse/bcrat/internal/config"
	"github.com/epiverse/bcrat/internal/database"
	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/health"
	"github.com/epiverse/bcrat/internal/history"
	"github.com/epiverse/bcrat/internal/repository"
	"github.com/epiverse/bcrat/internal/riskmodel"
	"github.com/epiverse/bcrat/internal/service"
	"github.com/epiverse/bcrat/internal/tables"
)

const version = "v1.0.0"

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(&cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"version": version,
	}).Info("Starting breast cancer risk service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	provider := tables.Default()
	engine := riskmodel.NewCalculator(provider, logger)

	checks := []health.Check{&health.ModelTablesCheck{Provider: provider}}
	serviceOpts := []service.Option{}

	// Optional postgres pool for assessment persistence.
	var store domain.AssessmentStore
	if cfg.Database.Enabled {
		db, err := database.NewConnection(ctx, &cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		store = repository.NewAssessmentRepository(db.Pool, logger)
		checks = append(checks, &health.DatabaseCheck{Pool: db.Pool})
	} else if cfg.History.Backend != "none" {
		store = openHistoryStore(configManager, logger)
	}
	if store != nil {
		serviceOpts = append(serviceOpts, service.WithHistory(history.NewResilientStore(store, logger)))
	}

	// Optional Redis result cache.
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()
		serviceOpts = append(serviceOpts, service.WithResultCache(redisCache))

		opts, err := redisv8.ParseURL(configManager.GetRedisConnectionString())
		if err != nil {
			logger.WithError(err).Fatal("Invalid Redis URL")
		}
		checks = append(checks, &health.RedisCheck{Client: redisv8.NewClient(opts)})
	}

	riskService, err := service.NewRiskService(engine, service.ServiceConfig{}, logger, serviceOpts...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create risk service")
	}

	checker := health.NewChecker(version, logger, checks...)
	server := api.NewServer(configManager, riskService, checker, store, logger)

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// openHistoryStore opens the configured standalone history backend.
func openHistoryStore(configManager *config.Manager, logger *logrus.Logger) domain.AssessmentStore {
	cfg := configManager.GetHistoryConfig()
	switch cfg.Backend {
	case "sqlite":
		store, err := history.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open sqlite history store")
		}
		return store
	case "postgres":
		store, err := history.NewPostgresStore(configManager.GetDatabaseConnectionString())
		if err != nil {
			logger.WithError(err).Fatal("Failed to open postgres history store")
		}
		return store
	default:
		return nil
	}
}

func newLogger(cfg *domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
