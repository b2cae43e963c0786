package consumer

import (
	"context"
	"errors"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/maker-atelier/service-booking/internal/application"
	"github.com/maker-atelier/service-booking/internal/events"
	"github.com/maker-atelier/service-booking/pkg/domain"
	"github.com/maker-atelier/service-booking/pkg/kafka"
)

// ProviderEventConsumer listens to relayed payment provider events and
// reconciles booking state: completed sessions are confirmed, lapsed ones
// expired. Both flows are idempotent, so a customer returning through the
// confirm endpoint and the relayed webhook can race harmlessly.
type ProviderEventConsumer struct {
	consumer       *kafka.Consumer
	bookingService *application.BookingService
	logger         *zap.Logger
}

// NewProviderEventConsumer creates a consumer for provider payment events.
func NewProviderEventConsumer(
	brokers []string,
	groupID string,
	bookingService *application.BookingService,
	logger *zap.Logger,
) *ProviderEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicProviderEvents, logger)
	return &ProviderEventConsumer{
		consumer:       consumer,
		bookingService: bookingService,
		logger:         logger,
	}
}

// Start begins consuming provider events. It blocks until ctx is cancelled.
func (c *ProviderEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *ProviderEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		// A malformed payload never parses on retry, so skip it rather than
		// block the partition.
		c.logger.Error("skipping unparseable cloud event from provider topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil
	}

	c.logger.Info("received provider event",
		zap.String("type", ce.Type),
		zap.String("id", ce.ID),
	)

	switch {
	case strings.EqualFold(ce.Type, events.CheckoutSessionCompleted):
		return c.handleSessionCompleted(ctx, ce)
	case strings.EqualFold(ce.Type, events.CheckoutSessionExpired):
		return c.handleSessionExpired(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled provider event type", zap.String("type", ce.Type))
		return nil
	}
}

func (c *ProviderEventConsumer) handleSessionCompleted(ctx context.Context, ce kafka.CloudEvent) error {
	var event events.CheckoutSessionEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("skipping checkout session event with malformed data", zap.Error(err))
		return nil
	}

	if _, err := c.bookingService.ConfirmBooking(ctx, event.SessionID); err != nil {
		// Retrying cannot help when no booking references the session or the
		// booking already left the pending state; only transient failures
		// should make the consumer hold its offset.
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidState) {
			c.logger.Warn("cannot confirm booking for completed session",
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}
	return nil
}

func (c *ProviderEventConsumer) handleSessionExpired(ctx context.Context, ce kafka.CloudEvent) error {
	var event events.CheckoutSessionEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("skipping checkout session event with malformed data", zap.Error(err))
		return nil
	}

	return c.bookingService.ExpireBooking(ctx, event.SessionID)
}

// Close closes the underlying Kafka consumer.
func (c *ProviderEventConsumer) Close() error {
	return c.consumer.Close()
}
