package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes a single Kafka message. Returning an error makes
// the consumer retry the same message with backoff; the offset never advances
// past a message the handler has not processed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// messageReader is the subset of kafka-go's Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// Consumer reads messages from a topic within a consumer group.
type Consumer struct {
	reader    messageReader
	logger    *zap.Logger
	retryBase time.Duration
	retryMax  time.Duration
}

// NewConsumer creates a group consumer for a single topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})
	return &Consumer{
		reader:    reader,
		logger:    logger,
		retryBase: retryBaseDelay,
		retryMax:  retryMaxDelay,
	}
}

// Consume fetches messages and hands them to the handler until ctx is
// cancelled or the reader is closed. Each message is retried until the
// handler succeeds, then its offset is committed. Group commits are
// high-watermark, so committing a later offset would permanently skip any
// earlier message the handler failed on.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return err
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			return err
		}

		if err := c.process(ctx, msg, handler); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset", zap.Error(err))
		}
	}
}

// process runs the handler, retrying with exponential backoff until it
// succeeds or ctx is cancelled.
func (c *Consumer) process(ctx context.Context, msg kafkago.Message, handler MessageHandler) error {
	delay := c.retryBase
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		c.logger.Error("message handler failed, retrying",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryMax {
			delay = c.retryMax
		}
	}
}

// Close shuts the reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
