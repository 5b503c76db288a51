package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/kudo"
	"github.com/thep200/github-kudos/internal/server"
	"github.com/thep200/github-kudos/internal/storage"
	"github.com/thep200/github-kudos/pkg/kafka"
	applog "github.com/thep200/github-kudos/pkg/log"
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "", "Config file (default cfg/yaml/mode.yaml)")
	port := flag.Int("port", 0, "Port to listen on (overrides server.port)")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, err := cfg.NewViperLoader(*configFile)
	if err != nil {
		fmt.Printf("Failed to create config loader: %v\n", err)
		os.Exit(1)
	}
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		config.Server.Port = *port
	}

	logger, err := applog.NewLogrusLogger(config.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	repo, err := storage.New(config, logger)
	if err != nil {
		logger.Error(ctx, "Failed to open storage: %v", err)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher kudo.Publisher = kudo.NopPublisher{}
	if config.KafkaEnabled() {
		producer, err := kafka.NewProducer(config, logger)
		if err != nil {
			logger.Error(ctx, "Failed to create kafka producer: %v", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	} else {
		logger.Notice(ctx, "Kafka not configured, kudo events are not published")
	}

	// only the log level is applied live
	loader.RegisterConfigChangeCallback(func(c *cfg.Config) {
		if err := logger.SetLevel(c.App.LogLevel); err != nil {
			logger.Warn(ctx, "Ignoring invalid log level %q: %v", c.App.LogLevel, err)
			return
		}
		logger.Notice(ctx, "Config reloaded, log level is %s", c.App.LogLevel)
	})

	// Create and run the server
	srv, err := server.NewServer(logger.With("component", "api"), config, repo, publisher)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	// Run server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	logger.Info(ctx, "Server shut down gracefully")
}
