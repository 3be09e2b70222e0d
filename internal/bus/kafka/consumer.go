package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Guyuepp/like-engine/domain"
)

// defaultRedeliverDelay spaces out in-place re-processing of a message
// that reached no terminal outcome.
const defaultRedeliverDelay = 5 * time.Second

// messageReader is the slice of kafka.Reader the worker loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerGroup runs one reader goroutine per worker, all in the same
// consumer group. The broker spreads partitions across the workers;
// within a worker each message is processed to completion (retries
// included) before the next one, which serializes processing per
// partition while keeping cross-partition work parallel.
type ConsumerGroup struct {
	brokers        []string
	topic          string
	groupID        string
	workers        int
	messageTimeout time.Duration
	processor      domain.IntentProcessor

	newReader      func() messageReader
	redeliverDelay time.Duration
}

func NewConsumerGroup(brokers []string, topic, groupID string, workers int, messageTimeout time.Duration, processor domain.IntentProcessor) *ConsumerGroup {
	c := &ConsumerGroup{
		brokers:        brokers,
		topic:          topic,
		groupID:        groupID,
		workers:        workers,
		messageTimeout: messageTimeout,
		processor:      processor,
		redeliverDelay: defaultRedeliverDelay,
	}
	c.newReader = func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.brokers,
			GroupID:  c.groupID,
			Topic:    c.topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}
	return c
}

func (c *ConsumerGroup) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		i := i
		g.Go(func() error {
			return c.runWorker(ctx, i)
		})
	}
	return g.Wait()
}

func (c *ConsumerGroup) runWorker(ctx context.Context, id int) error {
	reader := c.newReader()
	defer func() {
		if err := reader.Close(); err != nil {
			logrus.Errorf("worker %d: failed to close reader: %v", id, err)
		}
	}()

	logrus.Infof("consumer worker %d started on topic %s", id, c.topic)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				logrus.Infof("consumer worker %d stopping", id)
				return nil
			}
			return err
		}

		if err := c.processMessage(ctx, id, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				logrus.Infof("consumer worker %d stopping", id)
				return nil
			}
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logrus.Errorf("worker %d: failed to commit offset: %v", id, err)
		}
	}
}

// processMessage drives one message to a terminal outcome before the
// worker moves on. Fetching the next message would advance the reader
// past this offset regardless of commits, so a non-terminal outcome is
// re-processed in place rather than skipped.
func (c *ConsumerGroup) processMessage(ctx context.Context, id int, msg kafka.Message) error {
	for {
		// The per-message deadline bounds how long one slow attempt can
		// occupy this worker; the retry cap alone bounds attempts, not
		// wall-clock time.
		procCtx, cancel := context.WithTimeout(ctx, c.messageTimeout)
		err := c.processor.Process(procCtx, msg.Value)
		cancel()
		if err == nil {
			return nil
		}

		logrus.Errorf("worker %d: no terminal outcome for offset %d, re-processing in %v: %v", id, msg.Offset, c.redeliverDelay, err)
		timer := time.NewTimer(c.redeliverDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
