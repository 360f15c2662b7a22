package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type WatermarkRepo struct {
	client *goredis.Client
	key    string
}

func NewWatermarkRepo(client *goredis.Client, key string) *WatermarkRepo {
	if key == "" {
		key = "reconcile:watermark"
	}
	return &WatermarkRepo{client: client, key: key}
}

// Load returns the zero time when no watermark was stored yet.
func (r *WatermarkRepo) Load(ctx context.Context) (time.Time, error) {
	if r.client == nil {
		return time.Time{}, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get watermark: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark: %w", err)
	}
	return at.UTC(), nil
}

func (r *WatermarkRepo) Store(ctx context.Context, at time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, r.key, at.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	return nil
}
