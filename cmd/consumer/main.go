package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/kafka"
	"github.com/thep200/github-kudos/pkg/log"
)

// batchSaver persists one batch of kudo events.
type batchSaver interface {
	CreateBatch(messages []model.KudoMessage) error
}

func main() {
	configFile := flag.String("config", "", "Config file (default cfg/yaml/mode.yaml)")
	flag.Parse()

	// Load configuration
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

	// Setup logger
	logger, err := log.NewLogrusLogger(config.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Setup database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mysql, err := db.NewMysql(config)
	if err != nil {
		logger.Error(ctx, "Failed to create database client: %v", err)
		os.Exit(1)
	}
	defer mysql.Close()

	eventModel, err := model.NewKudoEvent(config, logger, mysql)
	if err != nil {
		logger.Error(ctx, "Failed to create kudo event model: %v", err)
		os.Exit(1)
	}
	if err := mysql.Migrate(eventModel); err != nil {
		logger.Error(ctx, "Failed to migrate kudo events: %v", err)
		os.Exit(1)
	}

	consumer, err := kafka.NewConsumer(config, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create consumer: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := startKudoConsumer(ctx, config, logger, consumer, eventModel)

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
	<-done
}

// startKudoConsumer registers the kudo handlers and returns a channel closed
// once the last batch has been flushed.
func startKudoConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, consumer *kafka.Consumer, saver batchSaver) <-chan struct{} {
	batchSize := config.Kafka.Consumer.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}
	batchTimeout := time.Duration(config.Kafka.Consumer.BatchTimeoutSec) * time.Second
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}

	messages := make(chan model.KudoMessage, batchSize*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		processBatchedKudos(ctx, messages, batchSize, batchTimeout, logger, saver)
	}()

	handler := kudoHandler(ctx, messages)
	for _, key := range []string{model.KudoCreated, model.KudoUpdated, model.KudoDeleted} {
		consumer.RegisterHandler(key, handler)
	}

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Kudo consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Kudo event consumer started successfully")
	return done
}

func kudoHandler(ctx context.Context, messages chan<- model.KudoMessage) func([]byte) error {
	return func(data []byte) error {
		var msg model.KudoMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal kudo message: %w", err)
		}
		if msg.EventID == "" {
			return errors.New("kudo message without event id")
		}

		select {
		case messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
}

// processBatchedKudos flushes when the batch is full, when batchTimeout
// elapses, and once more on shutdown.
func processBatchedKudos(ctx context.Context, messages <-chan model.KudoMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, saver batchSaver) {

	var batch []model.KudoMessage
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case msg := <-messages:
					batch = append(batch, msg)
				default:
					break drain
				}
			}
			processSingleBatch(context.Background(), batch, logger, saver)
			return

		case msg := <-messages:
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processSingleBatch(ctx, batch, logger, saver)
				batch = nil
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			processSingleBatch(ctx, batch, logger, saver)
			batch = nil
			timer.Reset(batchTimeout)
		}
	}
}

func processSingleBatch(ctx context.Context, batch []model.KudoMessage, logger log.Logger, saver batchSaver) {
	if len(batch) == 0 {
		return
	}

	logger.Info(ctx, "Processing batch of %d kudo events", len(batch))
	if err := saver.CreateBatch(batch); err != nil {
		logger.Error(ctx, "Failed to save batch of kudo events: %v", err)
		return
	}
	logger.Info(ctx, "Successfully saved batch of %d kudo events", len(batch))
}
