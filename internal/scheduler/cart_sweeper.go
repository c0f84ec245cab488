package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/aurelia-atelier/aurelia-backend/internal/cartstore"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

// CartSweeper removes persisted carts that have not been touched for longer
// than the configured idle age. Without it, abandoned anonymous sessions
// accumulate in Redis forever.
type CartSweeper struct {
	cron     *cron.Cron
	client   *redis.Client
	schedule string
	maxIdle  time.Duration
}

func NewCartSweeper(client *redis.Client, schedule string, maxIdle time.Duration) *CartSweeper {
	return &CartSweeper{
		cron:     cron.New(),
		client:   client,
		schedule: schedule,
		maxIdle:  maxIdle,
	}
}

// Start registers the sweep job and starts the cron runner.
func (s *CartSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			logger.Error("Cart sweep failed", err)
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart sweeper started", map[string]interface{}{
		"schedule": s.schedule,
		"max_idle": s.maxIdle.String(),
	})

	return nil
}

// Sweep scans every persisted cart and deletes the stale ones. Carts that
// fail to decode are deleted too: they can never be rehydrated.
func (s *CartSweeper) Sweep(ctx context.Context) error {
	logger.Info("Starting cart sweep", nil)

	var scanned, removed int

	iter := s.client.Scan(ctx, 0, cartstore.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		scanned++

		raw, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			logger.Warn("Failed to read cart during sweep", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}

		state, err := cartstore.Decode(raw)
		if err != nil {
			logger.Warn("Deleting undecodable cart", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			s.delete(ctx, key, &removed)
			continue
		}

		if time.Since(state.LastUpdated) > s.maxIdle {
			s.delete(ctx, key, &removed)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	logger.Info("Cart sweep finished", map[string]interface{}{
		"scanned": scanned,
		"removed": removed,
	})

	return nil
}

func (s *CartSweeper) delete(ctx context.Context, key string, removed *int) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("Failed to delete stale cart", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	*removed++
}

// Stop halts the cron runner.
func (s *CartSweeper) Stop() {
	logger.Info("Stopping cart sweeper...", nil)
	s.cron.Stop()
	logger.Info("Cart sweeper stopped", nil)
}
