package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/log"
)

// Consumer reads the kudo topic and routes messages to handlers by key.
type Consumer struct {
	Config   *cfg.Config
	Logger   log.Logger
	reader   *kafka.Reader
	handlers map[string]func([]byte) error
}

// NewConsumer creates a consumer in the configured group for the kudo topic.
func NewConsumer(config *cfg.Config, logger log.Logger) (*Consumer, error) {
	if !config.KafkaEnabled() {
		return nil, fmt.Errorf("kafka brokers or topic not configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          config.Kafka.Producer.TopicKudo,
		GroupID:        config.Kafka.Consumer.GroupID,
		MinBytes:       10e3,        // 10KB
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Maximum amount of time to wait for new data
		StartOffset:    kafka.FirstOffset,
		RetentionTime:  7 * 24 * time.Hour, // 1 week
		CommitInterval: time.Second,        // Flush commits to Kafka every second
	})

	return &Consumer{
		Config:   config,
		Logger:   logger,
		reader:   reader,
		handlers: make(map[string]func([]byte) error),
	}, nil
}

// RegisterHandler registers a message handler for a specific message key
func (c *Consumer) RegisterHandler(key string, handler func([]byte) error) {
	if c.handlers == nil {
		c.handlers = make(map[string]func([]byte) error)
	}
	c.handlers[key] = handler
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.reader.Close()
			}
			c.Logger.Error(ctx, "Error reading message: %v", err)
			continue
		}

		c.dispatch(ctx, message)
	}
}

func (c *Consumer) dispatch(ctx context.Context, message kafka.Message) {
	key := string(message.Key)
	handler, exists := c.handlers[key]
	if !exists {
		c.Logger.Warn(ctx, "No handler registered for message with key: %s", key)
		return
	}

	if err := handler(message.Value); err != nil {
		c.Logger.Error(ctx, "Error handling message with key %s: %v", key, err)
		return
	}
	c.Logger.Debug(ctx, "Processed message with key: %s", key)
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
