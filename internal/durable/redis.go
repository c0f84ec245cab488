package durable

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

// changeEnvelope is the pub/sub payload for one write. Origin lets watchers
// filter out their own writes.
type changeEnvelope struct {
	Origin  string `json:"origin"`
	Value   string `json:"value,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

type redisStore struct {
	client *redis.Client
	origin string
}

// NewRedis wraps a Redis client as one execution context of the durable
// store. Writes are broadcast on a per-key channel so other contexts
// (other processes or other handles) converge on the latest value.
func NewRedis(client *redis.Client) Store {
	return &redisStore{client: client, origin: uuid.NewString()}
}

func changeChannel(key string) string {
	return fmt.Sprintf("durable:changes:%s", key)
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return err
	}
	s.publish(ctx, key, changeEnvelope{Origin: s.origin, Value: value})
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	s.publish(ctx, key, changeEnvelope{Origin: s.origin, Removed: true})
	return nil
}

// publish is best-effort: a missed notification only delays convergence
// until the next read of the key.
func (s *redisStore) publish(ctx context.Context, key string, env changeEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to marshal change notification", err, map[string]interface{}{
			"key": key,
		})
		return
	}
	if err := s.client.Publish(ctx, changeChannel(key), payload).Err(); err != nil {
		logger.Warn("Failed to publish change notification", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *redisStore) Watch(ctx context.Context, key string) (<-chan Event, error) {
	pubsub := s.client.Subscribe(ctx, changeChannel(key))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", changeChannel(key), err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env changeEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.Warn("Dropping malformed change notification", map[string]interface{}{
						"key":   key,
						"error": err.Error(),
					})
					continue
				}
				if env.Origin == s.origin {
					continue
				}
				select {
				case out <- Event{Key: key, Value: env.Value, Removed: env.Removed}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *redisStore) Close() error {
	return nil
}
