package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	swipesMinuteWindow = time.Minute
	swipes10SecWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps swipes per user over a one minute and a ten second window.
// A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// AllowSwipe records one swipe attempt. When a window is exhausted it returns
// allowed=false and the seconds until the longest blocking window resets.
func (l *Limiter) AllowSwipe(ctx context.Context, userID string) (int64, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	windows := []struct {
		key    string
		window time.Duration
		limit  int
	}{
		{key: "rate:swipes:min:" + userID, window: swipesMinuteWindow, limit: l.perMinute},
		{key: "rate:swipes:10s:" + userID, window: swipes10SecWindow, limit: l.per10Sec},
	}

	retryAfterSec := int64(0)
	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
