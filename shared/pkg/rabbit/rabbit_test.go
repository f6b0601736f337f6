package rabbit

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func TestPublisher_PublishPersistentJSON(t *testing.T) {
	ch := &recordingChannel{}
	p := NewPublisher(ch, ExchangeEvents)

	err := p.Publish(context.Background(), "orders.placed", []byte(`{"orden":5}`), amqp.Table{"x-attempts": int32(0)})
	require.NoError(t, err)

	require.Equal(t, ExchangeEvents, ch.exchange)
	require.Equal(t, "orders.placed", ch.key)
	require.Equal(t, "application/json", ch.msg.ContentType)
	require.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	require.JSONEq(t, `{"orden":5}`, string(ch.msg.Body))
	require.Equal(t, int32(0), ch.msg.Headers["x-attempts"])
}
