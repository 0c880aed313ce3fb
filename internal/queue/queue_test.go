package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "export", Body: json.RawMessage(`{"id":"1"}`)}))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	msg := receive(t, ch)
	assert.Equal(t, "export", msg.Type)
	assert.JSONEq(t, `{"id":"1"}`, string(msg.Body))

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestInMemory_PublishRespectsContext(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "b"}), context.DeadlineExceeded)
}

func TestRedisQueue_PublishConsume(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	q := NewRedisQueue(client, "test:exports", zaptest.NewLogger(t))
	q.blockOn = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, Message{Type: "export", Body: json.RawMessage(`{"id":"first"}`)}))
	require.NoError(t, q.Publish(ctx, Message{Type: "export", Body: json.RawMessage(`{"id":"second"}`)}))

	// A foreign entry on the list must not stall the consumer.
	mr.Lpush("test:exports", "not json")

	ch, err := q.Consume(ctx)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"first"}`, string(receive(t, ch).Body))
	assert.JSONEq(t, `{"id":"second"}`, string(receive(t, ch).Body))
}

func TestNewRedisQueue_DefaultKey(t *testing.T) {
	q := NewRedisQueue(nil, "", nil)
	assert.Equal(t, "attendance:exports", q.key)
}
