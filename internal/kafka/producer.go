package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-cinema/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher sends one message to a topic. Services depend on this rather
// than on the producer so tests and Kafka-less runs can swap it out.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	logger *logger.Logger
}

func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, logger: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.Error("KAFKA", fmt.Sprintf("Failed to publish to %s: %v", topic, err))
		return err
	}
	p.logger.LogKafka("PUBLISH", topic, key)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishJSON marshals v and publishes it with the given key.
func PublishJSON(ctx context.Context, pub Publisher, topic, key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", topic, err)
	}
	return pub.Publish(ctx, topic, key, value)
}

// NopPublisher drops every message. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, []byte) error { return nil }
