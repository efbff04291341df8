// Package notify publishes notification intents for an external sender.
package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/config"
)

// Intent asks the notification sender to tell a user about something.
type Intent struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	RecipientID string            `json:"recipient_id"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes intents to a topic keyed by recipient, so one
// recipient's notifications stay ordered.
type KafkaPublisher struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaPublisher builds a publisher from configuration. Without brokers
// the publisher logs and skips every intent.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	if len(cfg.Brokers) == 0 {
		logger.Warn("KAFKA_BROKERS not provided; notifications disabled")
		return &KafkaPublisher{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return NewKafkaPublisherWithWriter(writer, logger)
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(writer Writer, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish sends one intent.
func (p *KafkaPublisher) Publish(ctx context.Context, intent Intent) error {
	if p == nil || p.writer == nil {
		if p != nil {
			p.logger.Debug("notification skipped", zap.String("kind", intent.Kind))
		}
		return nil
	}

	value, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(intent.RecipientID),
		Value: value,
		Time:  intent.CreatedAt,
	})
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
