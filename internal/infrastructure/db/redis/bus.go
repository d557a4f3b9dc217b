package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

const pushChannel = "realtime:push"

// PushBus fans realtime deliveries out to every API instance over Redis
// pub/sub, so a socket connected to any instance receives them.
type PushBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewPushBus(client *redis.Client, log zerolog.Logger) *PushBus {
	return &PushBus{client: client, log: log}
}

// Publish broadcasts job to all subscribers.
func (b *PushBus) Publish(ctx context.Context, job domain.PushJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("push bus encode: %w", err)
	}
	if err := b.client.Publish(ctx, pushChannel, raw).Err(); err != nil {
		return fmt.Errorf("push bus publish: %w", err)
	}
	return nil
}

// Run delivers every received job to deliver until ctx is cancelled.
func (b *PushBus) Run(ctx context.Context, deliver func(domain.PushJob)) error {
	sub := b.client.Subscribe(ctx, pushChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("push bus subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var job domain.PushJob
			if err := json.Unmarshal([]byte(msg.Payload), &job); err != nil {
				b.log.Warn().Err(err).Msg("dropping malformed push message")
				continue
			}
			deliver(job)
		}
	}
}
