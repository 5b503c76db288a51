package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/model"
	"github.com/thep200/github-kudos/internal/storage"
	"github.com/thep200/github-kudos/pkg/db"
	"github.com/thep200/github-kudos/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "Config file (default cfg/yaml/mode.yaml)")
	flag.Parse()

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
	logger, err := log.NewLogrusLogger(config.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := migrate(ctx, config, logger); err != nil {
		logger.Error(ctx, "Migration failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Migration finished for %s storage", driverName(config))
}

func driverName(config *cfg.Config) string {
	if config.Storage.Driver == "" {
		return storage.DriverBolt
	}
	return config.Storage.Driver
}

// migrate prepares the kudo store and, when Kafka is on, the event table.
func migrate(ctx context.Context, config *cfg.Config, logger log.Logger) error {
	switch driverName(config) {
	case storage.DriverMysql:
		mysql, err := db.NewMysql(config)
		if err != nil {
			return fmt.Errorf("create database client: %w", err)
		}
		defer mysql.Close()

		if err := mysql.Ping(ctx); err != nil {
			return err
		}
		if err := storage.NewMysqlRepository(logger, mysql).Migrate(); err != nil {
			return err
		}
		if !config.KafkaEnabled() {
			return nil
		}
		eventModel, err := model.NewKudoEvent(config, logger, mysql)
		if err != nil {
			return fmt.Errorf("create kudo event model: %w", err)
		}
		return mysql.Migrate(eventModel)

	case storage.DriverBolt:
		// opening the store creates its buckets
		repo, err := storage.New(config, logger)
		if err != nil {
			return err
		}
		return repo.Close()

	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
}
