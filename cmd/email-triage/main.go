package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search standard locations)")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(di.Options{ConfigPath: *configPath})
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	listeners []ports.Listener,
	generator core.TextGenerator,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	logger.Info("Starting email triage", zap.String("model", generator.ModelName()))

	// Start the inbound surfaces
	started := make([]ports.Listener, 0, len(listeners))
	for _, l := range listeners {
		if err := l.Start(); err != nil {
			logger.Error("Failed to start listener", zap.String("listener", l.Name()), zap.Error(err))
			stopAll(logger, started)
			return err
		}
		started = append(started, l)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	stopAll(logger, started)

	// Close any resources that need closing
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}

func stopAll(logger *zap.Logger, listeners []ports.Listener) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(listeners) - 1; i >= 0; i-- {
		if err := listeners[i].Stop(ctx); err != nil {
			logger.Error("Failed to stop listener", zap.String("listener", listeners[i].Name()), zap.Error(err))
		}
	}
}
