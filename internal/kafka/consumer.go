package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler must return nil only when processing succeeded and the offset may be
// committed.
type Handler func(ctx context.Context, m kafka.Message) error

const handlerAttempts = 3

var retryBackoff = 200 * time.Millisecond

type Consumer struct {
	r       *kafka.Reader
	log     *zap.Logger
	workers int
	commit  func(ctx context.Context, msgs ...kafka.Message) error
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, log: log, workers: workers, commit: r.CommitMessages}
}

// Start reads until ctx is canceled, fanning messages out to the worker pool.
// A message that still fails after the retry budget stops the consumer; its
// offset stays uncommitted so the group redelivers it.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*2)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for m := range jobs {
				if err := c.process(gctx, h, m); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for {
			m, err := c.r.ReadMessage(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			select {
			case jobs <- m:
			case <-gctx.Done():
				return nil
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// process runs the handler with a bounded retry and commits only on success.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = h(ctx, m); err == nil {
			return c.commit(ctx, m)
		}
		if attempt == handlerAttempts {
			break
		}
		c.log.Warn("message handler",
			zap.String("topic", m.Topic),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("handle %s partition %d offset %d: %w", m.Topic, m.Partition, m.Offset, err)
}
