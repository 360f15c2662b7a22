package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/infra/metrics"
	"github.com/brainpair/backend/internal/pkg/validate"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedDirection = errors.New("unsupported swipe direction")
	ErrDependenciesNil      = errors.New("swipe dependencies are not configured")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	Merge(ctx context.Context, userID, targetID string, direction enums.SwipeDirection, now time.Time) error
	Record(ctx context.Context, userID string) (model.SwipeRecord, error)
}

type MatchStore interface {
	Create(ctx context.Context, userA, userB string, now time.Time) (model.Match, bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID string) (int64, bool, error)
}

type EventPublisher interface {
	PublishSwipeChanged(ctx context.Context, event model.SwipeChangedEvent) error
}

type MatchNotifier interface {
	NotifyMatch(ctx context.Context, match model.Match) error
}

type Config struct {
	SideEffectTimeout time.Duration
}

type SwipeResult struct {
	MatchCreated bool
	MatchID      string
}

type Service struct {
	swipeStore  SwipeStore
	matchStore  MatchStore
	rateLimiter RateLimiter
	publisher   EventPublisher
	notifier    MatchNotifier
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         Config
	now         func() time.Time
	newEventID  func() string
}

type Dependencies struct {
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	RateLimiter RateLimiter
	Publisher   EventPublisher
	Notifier    MatchNotifier
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.SideEffectTimeout <= 0 {
		cfg.SideEffectTimeout = 3 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		rateLimiter: deps.RateLimiter,
		publisher:   deps.Publisher,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
		newEventID:  uuid.NewString,
	}
}

// RecordSwipe merges the swipe into the swiper's record and, for a right swipe,
// checks the target's record for the reciprocal right swipe. MatchCreated is
// true whenever the pair is mutual at that moment, including when the match
// already existed.
//
// The first of two users to swipe right always gets false here; the trigger
// creates or confirms the match for them later.
func (s *Service) RecordSwipe(ctx context.Context, swiperID, targetID, direction string) (SwipeResult, error) {
	if !validate.UserID(swiperID) || !validate.UserID(targetID) || swiperID == targetID {
		return SwipeResult{}, ErrValidation
	}

	dir, err := normalizeDirection(direction)
	if err != nil {
		return SwipeResult{}, err
	}

	if s.swipeStore == nil || s.matchStore == nil {
		return SwipeResult{}, ErrDependenciesNil
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, swiperID)
		if err != nil {
			s.logger.Warn("swipe rate limiter unavailable", zap.String("user_id", swiperID), zap.Error(err))
		} else if !allowed {
			return SwipeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	if err := s.swipeStore.Merge(ctx, swiperID, targetID, dir, now); err != nil {
		return SwipeResult{}, fmt.Errorf("record swipe: %w", err)
	}
	s.metrics.IncSwipe(string(dir))

	result := SwipeResult{}
	if dir == enums.SwipeRight {
		targetRecord, err := s.swipeStore.Record(ctx, targetID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("read target swipes: %w", err)
		}

		if targetRecord.Likes(swiperID) {
			match, created, err := s.matchStore.Create(ctx, swiperID, targetID, now)
			if err != nil {
				return SwipeResult{}, fmt.Errorf("create match: %w", err)
			}
			result.MatchCreated = true
			result.MatchID = match.ID

			if created {
				s.metrics.IncMatchCreated("detector")
				s.notify(ctx, match)
			}
		}
	}

	s.publish(ctx, model.SwipeChangedEvent{
		EventID:    s.newEventID(),
		UserID:     swiperID,
		TargetID:   targetID,
		Direction:  dir,
		OccurredAt: now,
	})

	return result, nil
}

func (s *Service) publish(ctx context.Context, event model.SwipeChangedEvent) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, s.cfg.SideEffectTimeout)
	defer cancel()

	if err := s.publisher.PublishSwipeChanged(pubCtx, event); err != nil {
		s.metrics.IncSideEffectFailure("publish")
		s.logger.Warn("publish swipe changed event failed",
			zap.String("event_id", event.EventID),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}

func (s *Service) notify(ctx context.Context, match model.Match) {
	if s.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, s.cfg.SideEffectTimeout)
	defer cancel()

	if err := s.notifier.NotifyMatch(notifyCtx, match); err != nil {
		s.metrics.IncSideEffectFailure("notify")
		s.logger.Warn("match notification failed", zap.String("match_id", match.ID), zap.Error(err))
	}
}

func normalizeDirection(input string) (enums.SwipeDirection, error) {
	switch enums.SwipeDirection(strings.ToLower(strings.TrimSpace(input))) {
	case enums.SwipeLeft:
		return enums.SwipeLeft, nil
	case enums.SwipeRight:
		return enums.SwipeRight, nil
	default:
		return "", ErrUnsupportedDirection
	}
}
