package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConsumer(t *testing.T) (*Consumer, *int) {
	t.Helper()
	old := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = old })

	c := NewConsumer([]string{"localhost:9092"}, "test-group", "test-topic", 2, zap.NewNop())
	t.Cleanup(func() { _ = c.r.Close() })

	commits := 0
	c.commit = func(ctx context.Context, msgs ...kafkago.Message) error {
		commits += len(msgs)
		return nil
	}
	return c, &commits
}

func TestProcessCommitsOnSuccess(t *testing.T) {
	c, commits := testConsumer(t)

	err := c.process(context.Background(), func(ctx context.Context, m kafkago.Message) error {
		return nil
	}, kafkago.Message{Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, *commits)
}

func TestProcessRetriesTransientFailure(t *testing.T) {
	c, commits := testConsumer(t)

	attempts := 0
	err := c.process(context.Background(), func(ctx context.Context, m kafkago.Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, kafkago.Message{Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, *commits)
}

func TestProcessGivesUpAfterBudget(t *testing.T) {
	c, commits := testConsumer(t)

	boom := errors.New("boom")
	err := c.process(context.Background(), func(ctx context.Context, m kafkago.Message) error {
		return boom
	}, kafkago.Message{Topic: "test-topic", Partition: 2, Offset: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "offset 7")
	assert.Zero(t, *commits, "failed message must not be committed")
}

func TestProcessStopsOnCanceledContext(t *testing.T) {
	c, commits := testConsumer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.process(ctx, func(ctx context.Context, m kafkago.Message) error {
		return errors.New("transient")
	}, kafkago.Message{Offset: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, *commits)
}
