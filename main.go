package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futures-capital-allocator/config"
	"futures-capital-allocator/internal/allocation"
	"futures-capital-allocator/internal/api"
	"futures-capital-allocator/internal/events"
	"futures-capital-allocator/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	logger.Info().Msg("structured logging initialized")

	// Initialize event bus
	eventBus := events.NewEventBus()
	logger.Info().Msg("event bus initialized")

	// Allocation policy and margin safety controller
	allocConfig := &allocation.Config{
		MaxRRRatio:                      cfg.AllocationConfig.MaxRRRatio,
		SignalQualityThreshold:          cfg.AllocationConfig.SignalQualityThreshold,
		BootstrapSignalQualityThreshold: cfg.AllocationConfig.BootstrapSignalQualityThreshold,
		BootstrapTradeLimit:             cfg.AllocationConfig.BootstrapTradeLimit,
		MaxTotalBudgetRatio:             cfg.AllocationConfig.MaxTotalBudgetRatio,
		MaxSinglePositionRatio:          cfg.AllocationConfig.MaxSinglePositionRatio,
		MaxTotalMarginRatio:             cfg.AllocationConfig.MaxTotalMarginRatio,
	}
	marginCtl := allocation.NewMarginSafetyController(
		cfg.MarginSafetyConfig.WarningThreshold,
		cfg.MarginSafetyConfig.CriticalThreshold,
		cfg.MarginSafetyConfig.LockThreshold,
		logger,
	)
	logger.Info().
		Float64("quality_threshold", allocConfig.SignalQualityThreshold).
		Float64("bootstrap_threshold", allocConfig.BootstrapSignalQualityThreshold).
		Msg("allocation engine configured")

	// HTTP API server
	server := api.NewServer(api.ServerConfig{
		Port:            cfg.ServerConfig.Port,
		Host:            cfg.ServerConfig.Host,
		AllowedOrigins:  cfg.ServerConfig.AllowedOrigins,
		ProductionMode:  cfg.ServerConfig.ProductionMode,
		ReadTimeout:     cfg.ServerConfig.ReadTimeout,
		WriteTimeout:    cfg.ServerConfig.WriteTimeout,
		ShutdownTimeout: cfg.ServerConfig.ShutdownTimeout,
	}, allocConfig, marginCtl, eventBus, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("shutdown complete")
}
