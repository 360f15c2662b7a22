package model

import (
	"time"

	"github.com/brainpair/backend/internal/domain/enums"
)

// SwipeRecord is one user's swipe decisions keyed by target user id.
type SwipeRecord map[string]enums.SwipeDirection

// Likes reports whether the owner of the record swiped right on userID.
func (r SwipeRecord) Likes(userID string) bool {
	if r == nil {
		return false
	}
	return r[userID] == enums.SwipeRight
}

// RightSwipes returns the targets swiped right, in no particular order.
func (r SwipeRecord) RightSwipes() []string {
	targets := make([]string, 0, len(r))
	for target, direction := range r {
		if direction == enums.SwipeRight {
			targets = append(targets, target)
		}
	}
	return targets
}

type SwipeChangedEvent struct {
	EventID    string               `json:"event_id"`
	UserID     string               `json:"user_id"`
	TargetID   string               `json:"target_id"`
	Direction  enums.SwipeDirection `json:"direction"`
	OccurredAt time.Time            `json:"occurred_at"`
}
