package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"ms-cinema/internal/logger"

	"github.com/segmentio/kafka-go"
)

const (
	TopicPurchaseCreated   = "cinema.purchase.created"
	TopicPurchaseCancelled = "cinema.purchase.cancelled"
	TopicPurchaseExpired   = "cinema.purchase.expired"
	TopicShowReminder      = "cinema.show.reminder"
)

// Topics lists every topic the service writes to.
func Topics() []string {
	return []string{TopicPurchaseCreated, TopicPurchaseCancelled, TopicPurchaseExpired, TopicShowReminder}
}

// EnsureTopicsExist creates missing topics through the cluster controller.
// Topics that already exist are left alone.
func EnsureTopicsExist(ctx context.Context, brokers []string, topics []string, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err := controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		switch {
		case err == nil:
			log.Info("KAFKA", fmt.Sprintf("Created topic: %s", topic))
		case errors.Is(err, kafka.TopicAlreadyExists):
			log.Debug("KAFKA", fmt.Sprintf("Topic %s already exists", topic))
		default:
			log.Warn("KAFKA", fmt.Sprintf("Error creating topic %s: %v", topic, err))
		}
	}
	return nil
}
