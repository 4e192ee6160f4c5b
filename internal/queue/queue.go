// Package queue publishes persisted payloads onto Kafka for downstream
// consumers. Publishing is optional and enabled by KAFKA_BROKERS.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/edgescan/internal/focus"
	"github.com/hetulpatel/edgescan/internal/signals"
)

const (
	DefaultSignalsTopic = "edgescan.signals"
	DefaultFocusTopic   = "edgescan.focus"
)

// Brokers parses KAFKA_BROKERS. An empty value means publishing is disabled.
func Brokers() []string {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func TopicFromEnv(envKey, fallback string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return fallback
}

// WaitForBroker blocks until the first broker accepts a connection or the
// context expires.
func WaitForBroker(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastErr error
	for {
		conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for broker: %w (last error: %v)", ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

// EnsureTopic creates the topic against the cluster controller if missing.
func EnsureTopic(ctx context.Context, brokers []string, topic string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}

	ctrlConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrlConn.Close()

	cfg := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}
	if err := ctrlConn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

// NewWriter builds a writer for one topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// PublishSignals emits one message per persisted scan payload.
func PublishSignals(ctx context.Context, writer *kafka.Writer, payload *signals.Payload) error {
	if writer == nil || payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal signal payload: %w", err)
	}
	key := fmt.Sprintf("signals-%d", payload.GeneratedAt)
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: raw})
}

// PublishFocus emits one message per persisted focus payload.
func PublishFocus(ctx context.Context, writer *kafka.Writer, payload *focus.Payload) error {
	if writer == nil || payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal focus payload: %w", err)
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(payload.Entropy), Value: raw})
}
