package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaDriver publishes jobs to a topic and consumes them as a consumer
// group, so several `queue:work` processes share the load.
type KafkaDriver struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

func NewKafkaDriver(brokers []string, topic, groupID string) *KafkaDriver {
	return &KafkaDriver{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			MinBytes:          1,
			MaxBytes:          10e6,
			MaxWait:           time.Second,
			CommitInterval:    time.Second,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (d *KafkaDriver) Push(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("queue/kafka: write: %w", err)
	}
	return nil
}

func (d *KafkaDriver) Pop(ctx context.Context) ([]byte, error) {
	m, err := d.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("queue/kafka: read: %w", err)
	}
	return m.Value, nil
}

func (d *KafkaDriver) Close() error {
	return errors.Join(d.writer.Close(), d.reader.Close())
}
