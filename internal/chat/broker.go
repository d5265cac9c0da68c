package chat

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// chatChannel is the single pub/sub channel every hub instance shares.
// Room routing happens locally after consumption, so instances don't need
// per-room subscriptions.
const chatChannel = "chat-messages"

// Broker is the fan-out backbone between hub instances. In production it is
// Redis pub/sub; tests use an in-process loopback.
type Broker interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context) <-chan []byte
}

type RedisBroker struct {
	client *redis.Client
}

var _ Broker = (*RedisBroker)(nil)

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, payload []byte) error {
	return b.client.Publish(ctx, chatChannel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context) <-chan []byte {
	pubsub := b.client.Subscribe(ctx, chatChannel)

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
