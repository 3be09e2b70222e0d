package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/like-engine/domain"
)

type deadLetterWriter struct {
	writer *kafka.Writer
}

var _ domain.DeadLetterSink = (*deadLetterWriter)(nil)

func NewDeadLetterWriter(brokers []string, topic string) *deadLetterWriter {
	return &deadLetterWriter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Send records the unprocessable message with its error for offline
// replay. Fire-and-forget: a failure here is logged and surfaced, never
// retried, so a broken sink cannot turn into an infinite failure loop.
func (d *deadLetterWriter) Send(ctx context.Context, payload []byte, cause error) error {
	err := d.writer.WriteMessages(ctx, kafka.Message{
		Value: payload,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
			{Key: "failed_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	})
	if err != nil {
		logrus.Errorf("failed to write message to dead letter topic: %v", err)
		return err
	}
	return nil
}

func (d *deadLetterWriter) Close() error {
	return d.writer.Close()
}
