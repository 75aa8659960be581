package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pickupcore/internal/utils"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans dispatch events out over Redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
}

func (p RedisPublisher) Publish(ctx context.Context, e Event) error {
	if p.Client == nil {
		return errors.New("redis client not configured")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.Client.Publish(ctx, Channel(e.Date, e.Session), payload).Err()
}

// Subscribe returns a channel that is closed once ctx is done or the
// subscription drops. Undecodable messages are logged and skipped.
func (p RedisPublisher) Subscribe(ctx context.Context, date, session string) (<-chan Event, error) {
	if p.Client == nil {
		return nil, errors.New("redis client not configured")
	}
	sub := p.Client.Subscribe(ctx, Channel(date, session))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					utils.LogEvent("", "feed", "decode", err.Error())
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
