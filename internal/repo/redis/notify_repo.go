package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/brainpair/backend/internal/domain/model"
)

const (
	notifyKeyPrefix = "notify:matches:"
	notifyMaxItems  = 100
	notifyTTL       = 7 * 24 * time.Hour
)

// NotifyRepo keeps a per-user inbox of match notifications.
type NotifyRepo struct {
	client *goredis.Client
}

func NewNotifyRepo(client *goredis.Client) *NotifyRepo {
	return &NotifyRepo{client: client}
}

func (r *NotifyRepo) Push(ctx context.Context, userID string, n model.MatchNotification) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal match notification: %w", err)
	}

	key := notifyKeyPrefix + userID
	if _, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, -notifyMaxItems, -1)
		pipe.Expire(ctx, key, notifyTTL)
		return nil
	}); err != nil {
		return fmt.Errorf("push match notification: %w", err)
	}

	return nil
}

// Drain returns pending notifications oldest first and empties the inbox.
func (r *NotifyRepo) Drain(ctx context.Context, userID string) ([]model.MatchNotification, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	key := notifyKeyPrefix + userID
	var items *goredis.StringSliceCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("drain match notifications: %w", err)
	}

	out := make([]model.MatchNotification, 0, len(items.Val()))
	for _, raw := range items.Val() {
		var n model.MatchNotification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		out = append(out, n)
	}

	return out, nil
}
