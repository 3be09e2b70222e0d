package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/Guyuepp/like-engine/domain"
)

type intentProducer struct {
	writer *kafka.Writer
}

var _ domain.IntentProducer = (*intentProducer)(nil)

// NewIntentProducer builds a producer for the delta-intent topic. The
// hash balancer with the post id as message key routes every intent for
// one post to the same partition, so applies for a post keep their
// order across retries.
func NewIntentProducer(brokers []string, topic string) *intentProducer {
	return &intentProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *intentProducer) Publish(ctx context.Context, intent domain.DeltaIntent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(intent.PostID, 10)),
		Value: payload,
	})
}

func (p *intentProducer) Close() error {
	return p.writer.Close()
}
