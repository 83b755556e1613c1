package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTopicIsolation verifies subscribers on different topics do not receive wrong messages.
func TestTopicIsolation(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()
	ctx := context.Background()

	chA, err := broker.Subscribe(ctx, "topic-a", "g")
	require.NoError(t, err)
	chB, err := broker.Subscribe(ctx, "topic-b", "g")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "topic-a", "k", []byte("message for topic-a")))
	assert.Equal(t, "message for topic-a", string(receive(t, chA).Value))

	select {
	case msg := <-chB:
		assert.Failf(t, "topic-b received unexpected message", "%q", msg.Value)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOffsetsIncreasePerTopic(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()
	ctx := context.Background()

	ch, err := broker.Subscribe(ctx, "runs", "g")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, broker.Publish(ctx, "runs", "", []byte("x")))
	}
	for want := int64(0); want < 3; want++ {
		assert.Equal(t, want, receive(t, ch).Offset)
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, "topic", "g")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected channel to be closed")
	case <-time.After(time.Second):
		require.FailNow(t, "channel not closed after context cancel")
	}

	// Publishing after the subscriber left must not block or fail.
	assert.NoError(t, broker.Publish(context.Background(), "topic", "", []byte("late")))
}

func TestPublishBlockedByFullBufferHonoursContext(t *testing.T) {
	broker := NewInMemoryBroker()
	defer broker.Close()

	_, err := broker.Subscribe(context.Background(), "topic", "g")
	require.NoError(t, err)
	for i := 0; i < subscriberBuffer; i++ {
		require.NoError(t, broker.Publish(context.Background(), "topic", "", nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, broker.Publish(ctx, "topic", "", nil), context.DeadlineExceeded)
}

func TestConcurrentPublishAndClose(t *testing.T) {
	broker := NewInMemoryBroker()
	ctx := context.Background()
	ch, err := broker.Subscribe(ctx, "topic", "g")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := broker.Publish(ctx, "topic", "", []byte("m")); err != nil {
					assert.ErrorIs(t, err, ErrClosed)
				}
			}
		}()
	}

	go func() {
		for range ch {
		}
	}()
	broker.Close()
	wg.Wait()

	assert.ErrorIs(t, broker.Publish(ctx, "topic", "", nil), ErrClosed)
}
