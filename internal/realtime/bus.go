package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus carries events between API instances. Events published on one instance
// reach SSE clients connected to any other through the shared channel.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	StartForwarder(ctx context.Context, onEvent func(Event)) error
	Close() error
}

type redisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBus builds a Bus on top of Redis pub/sub.
func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "ecolearn:notifications"
	}
	return &redisBus{client: client, channel: channel, logger: logger}
}

func (b *redisBus) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and pushes each event into onEvent
// from a background goroutine until the context ends.
func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	sub := b.client.Subscribe(ctx, b.channel)

	// confirm the subscription is live before returning
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.logger.Warn("bad realtime payload", zap.Error(err))
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *redisBus) Close() error {
	return nil
}
