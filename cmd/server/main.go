package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/api"
	"github.com/skin-wellness-navigator/internal/clinical"
	"github.com/skin-wellness-navigator/internal/config"
	"github.com/skin-wellness-navigator/internal/domain"
	"github.com/skin-wellness-navigator/internal/fallback"
	"github.com/skin-wellness-navigator/internal/health"
	"github.com/skin-wellness-navigator/internal/history"
	"github.com/skin-wellness-navigator/internal/image"
	"github.com/skin-wellness-navigator/internal/service"
	"github.com/skin-wellness-navigator/internal/vision"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting Skin Wellness Navigator")

	// Clinical reference data; the service runs with empty insights when
	// the file is missing.
	dataset, err := clinical.LoadDataset(cfg.Clinical.DataPath, logger)
	if err != nil {
		logger.WithError(err).Warn("Clinical dataset unavailable")
	}

	insights, err := clinical.NewInsightLookup(dataset, cfg.Clinical.InsightsCache, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create insight lookup")
	}

	classifier := buildClassifier(cfg, logger)

	var store history.Store
	var saver service.HistorySaver
	if cfg.History.Enabled {
		sqlStore, err := history.NewSQLiteStore(cfg.History.DBPath, cfg.History.MaxEntries)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open history store")
		}
		defer sqlStore.Close()
		store = sqlStore
		saver = sqlStore
	}

	analyzer := service.NewAnalyzer(
		image.NewPreprocessor(),
		classifier,
		fallback.NewSimulator(logger),
		insights,
		saver,
		logger,
	)

	server := api.NewServer(api.Deps{
		Config:   cfg,
		Analyzer: analyzer,
		Monitor:  health.NewMonitor(cfg.Health, logger),
		Store:    store,
		Dataset:  dataset,
		Logger:   logger,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// buildClassifier assembles the external classification path: the vision
// client wrapped with a circuit breaker and, when enabled, a redis result
// cache. A missing API key leaves the client unconfigured so every request
// takes the fallback path.
func buildClassifier(cfg *domain.Config, logger *logrus.Logger) domain.Classifier {
	client := vision.NewClient(cfg.Vision, logger)

	var cache *vision.ResultCache
	if cfg.Cache.Enabled {
		var err error
		cache, err = vision.NewResultCache(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Result cache unavailable, continuing without it")
		}
	}

	return vision.NewResilientClassifier(client, cache, logger)
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}
