package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is implemented by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return NewProducerWithWriter(writer, log)
}

func NewProducerWithWriter(writer MessageWriter, log *zap.Logger) *Producer {
	return &Producer{writer: writer, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published message", zap.String("topic", topic), zap.String("key", key))
	return nil
}

// PublishWithRetry backs off linearly between attempts and stops early when ctx is done.
func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		p.log.Warn("publish attempt failed",
			zap.Int("attempt", i+1),
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("publish to %s cancelled: %w", topic, ctx.Err())
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// RetryingPublisher sends every message through PublishWithRetry.
type RetryingPublisher struct {
	producer *Producer
	attempts int
}

func (p *Producer) WithRetries(attempts int) *RetryingPublisher {
	return &RetryingPublisher{producer: p, attempts: attempts}
}

func (r *RetryingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return r.producer.PublishWithRetry(ctx, topic, key, payload, r.attempts)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
