package matches

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	"github.com/brainpair/backend/internal/infra/metrics"
	"github.com/brainpair/backend/internal/pkg/validate"
)

type Notifier interface {
	NotifyMatch(ctx context.Context, match model.Match) error
}

type ReconcileResult struct {
	Checked int
	Created []string
}

// Reconciler is the server-side backstop for match detection. Given a user
// whose swipes changed it creates every match that is mutual but missing,
// regardless of which side swiped last.
type Reconciler struct {
	swipeStore SwipeStore
	matchStore MatchStore
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

type ReconcilerDependencies struct {
	SwipeStore SwipeStore
	MatchStore MatchStore
	Notifier   Notifier
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func NewReconciler(deps ReconcilerDependencies) *Reconciler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reconciler{
		swipeStore: deps.SwipeStore,
		matchStore: deps.MatchStore,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Reconcile is idempotent: existing matches are left untouched.
func (r *Reconciler) Reconcile(ctx context.Context, userID string) (ReconcileResult, error) {
	if !validate.UserID(userID) {
		return ReconcileResult{}, ErrValidation
	}
	if r.swipeStore == nil || r.matchStore == nil {
		return ReconcileResult{}, ErrDependenciesNil
	}
	defer r.metrics.ObserveReconcile(time.Now())

	record, err := r.swipeStore.Record(ctx, userID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("load swipes of %s: %w", userID, err)
	}

	targets := record.RightSwipes()
	sort.Strings(targets)

	result := ReconcileResult{Created: []string{}}
	for _, targetID := range targets {
		if targetID == userID {
			continue
		}
		result.Checked++

		targetRecord, err := r.swipeStore.Record(ctx, targetID)
		if err != nil {
			return result, fmt.Errorf("load swipes of %s: %w", targetID, err)
		}
		if !targetRecord.Likes(userID) {
			continue
		}

		exists, err := r.matchStore.Exists(ctx, rules.PairID(userID, targetID))
		if err != nil {
			return result, fmt.Errorf("check match: %w", err)
		}
		if exists {
			continue
		}

		match, created, err := r.matchStore.Create(ctx, userID, targetID, r.now().UTC())
		if err != nil {
			return result, fmt.Errorf("create match: %w", err)
		}
		if !created {
			continue
		}

		result.Created = append(result.Created, match.ID)
		r.metrics.IncMatchCreated("trigger")
		r.logger.Info("match created by reconciler", zap.String("match_id", match.ID))

		if r.notifier != nil {
			if err := r.notifier.NotifyMatch(ctx, match); err != nil {
				r.metrics.IncSideEffectFailure("notify")
				r.logger.Warn("match notification failed", zap.String("match_id", match.ID), zap.Error(err))
			}
		}
	}

	return result, nil
}

// HandleSwipeChanged reconciles the user named by a swipes.changed event.
// Undecodable events are dropped; a storage error is returned so the
// consumer retries the message.
func (r *Reconciler) HandleSwipeChanged(ctx context.Context, payload []byte) error {
	var event model.SwipeChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		r.logger.Warn("drop undecodable swipe changed event", zap.Error(err))
		return nil
	}
	if !validate.UserID(event.UserID) {
		r.logger.Warn("drop swipe changed event without user", zap.String("event_id", event.EventID))
		return nil
	}

	result, err := r.Reconcile(ctx, event.UserID)
	if err != nil {
		r.metrics.IncSideEffectFailure("trigger")
		return fmt.Errorf("reconcile %s: %w", event.UserID, err)
	}

	if len(result.Created) > 0 {
		r.logger.Info("swipe change reconciled",
			zap.String("event_id", event.EventID),
			zap.String("user_id", event.UserID),
			zap.Strings("created", result.Created),
		)
	}
	return nil
}
