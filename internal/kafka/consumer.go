package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is implemented by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventHandler processes one decoded booking event.
type EventHandler func(ctx context.Context, event BookingEvent) error

// Consumer feeds booking events from a consumer group to an EventHandler.
type Consumer struct {
	reader MessageReader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return NewConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), logger)
}

func NewConsumerWithReader(reader MessageReader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: reader, logger: logger}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is done, the reader fails or handle returns an error.
// Cancellation is a clean stop and yields nil. Payloads that are not booking
// events are logged and skipped so one bad record cannot wedge the group.
func (c *Consumer) Consume(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return fmt.Errorf("read booking event: %w", err)
		}

		event, err := DecodeBookingEvent(msg.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable booking event",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}

		if err := handle(ctx, event); err != nil {
			return fmt.Errorf("handle %s for booking %s (%s@%d): %w",
				event.Type, event.BookingID, msg.Topic, msg.Offset, err)
		}
	}
}
