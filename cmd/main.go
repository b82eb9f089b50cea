package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myregistry/adapters"
	"myregistry/domain"
	"myregistry/handlers"
	"myregistry/interfaces"
	"myregistry/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
)

func main() {
	// Initialize logger
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting myregistry node")

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger = log.WithPrefix(logger, "node", config.NodeName)
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"service_port_http", config.HTTPPort,
		"peers", len(config.Peers),
		"eviction_interval", config.EvictionInterval,
	)

	timeProvider := service.NewTimeProvider(func() time.Time { return time.Now().UTC() })

	// Replication batcher with one HTTP client per peer
	var batcher *service.ReplicationBatcher
	{
		peerClients := make([]interfaces.PeerClient, 0, len(config.Peers))
		for _, peerURL := range config.Peers {
			peerClients = append(peerClients, adapters.PeerHTTP(peerURL, &http.Client{
				Timeout: config.Replication.AttemptTimeout,
			}))
		}
		batcher = service.NewReplicationBatcher(config.Replication, peerClients, logger)
	}

	// Registry core and response cache. The cache rebuilds from the
	// registry's snapshot and receives every mutation the registry applies.
	var registry interfaces.Registry
	cache := service.NewResponseCache(config.Cache, func() []domain.InstanceInfo {
		return registry.Snapshot()
	}, timeProvider, logger)
	registry = service.NewInstanceRegistry(config.Registry, timeProvider, batcher, cache, logger)

	// Eviction scheduler
	scheduler := service.NewEvictionScheduler(registry, timeProvider, config.EvictionInterval, logger)
	scheduler.Start()

	// Create HTTP server (Echo)
	var e *echo.Echo
	{
		e = echo.New()
		e.HideBanner = true
		service.RegisterErrorHandler(e, logger)

		validator, err := handlers.NewOpenAPIValidator()
		if err != nil {
			level.Error(logger).Log("msg", "Failed to build OpenAPI validator", "err", err)
			os.Exit(1)
		}
		e.Use(validator)
		handlers.RegisterHandlers(e, handlers.NewHTTPServer(registry, cache, logger))
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%d", config.HTTPPort)
		level.Info(logger).Log("msg", "Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "HTTP server error", "err", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	level.Info(logger).Log("msg", "Shutting down node...")

	// Graceful shutdown with timeout: stop taking traffic, stop the sweep,
	// then drain in-flight replication best-effort.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during server shutdown", "err", err)
	}
	scheduler.Stop()
	if err := batcher.Shutdown(shutdownCtx); err != nil {
		level.Warn(logger).Log("msg", "Replication drain incomplete, peers will converge via re-registration", "err", err)
	}

	level.Info(logger).Log("msg", "Node stopped")
}
