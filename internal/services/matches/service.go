package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	"github.com/brainpair/backend/internal/pkg/validate"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("match dependencies are not configured")
)

type SwipeStore interface {
	Merge(ctx context.Context, userID, targetID string, direction enums.SwipeDirection, now time.Time) error
	Record(ctx context.Context, userID string) (model.SwipeRecord, error)
}

type MatchStore interface {
	Create(ctx context.Context, userA, userB string, now time.Time) (model.Match, bool, error)
	Exists(ctx context.Context, matchID string) (bool, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]model.Match, error)
	Delete(ctx context.Context, matchID string) (bool, error)
}

type Inbox interface {
	Push(ctx context.Context, userID string, n model.MatchNotification) error
	Drain(ctx context.Context, userID string) ([]model.MatchNotification, error)
}

type Dependencies struct {
	SwipeStore SwipeStore
	MatchStore MatchStore
	Inbox      Inbox
	Logger     *zap.Logger
}

type MatchItem struct {
	MatchID   string
	PartnerID string
	CreatedAt time.Time
}

type Service struct {
	swipeStore SwipeStore
	matchStore MatchStore
	inbox      Inbox
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		swipeStore: deps.SwipeStore,
		matchStore: deps.MatchStore,
		inbox:      deps.Inbox,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]MatchItem, error) {
	if !validate.UserID(userID) {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, ErrDependenciesNil
	}

	rows, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			MatchID:   row.ID,
			PartnerID: row.Partner(userID),
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

// Unmatch turns the caller's swipe on targetID into a left swipe before
// deleting the match, so a later reconciliation does not bring it back.
func (s *Service) Unmatch(ctx context.Context, userID, targetID string) (bool, error) {
	if !validate.UserID(userID) || !validate.UserID(targetID) || userID == targetID {
		return false, ErrValidation
	}
	if s.swipeStore == nil || s.matchStore == nil {
		return false, ErrDependenciesNil
	}

	if err := s.swipeStore.Merge(ctx, userID, targetID, enums.SwipeLeft, s.now().UTC()); err != nil {
		return false, fmt.Errorf("withdraw swipe: %w", err)
	}

	deleted, err := s.matchStore.Delete(ctx, rules.PairID(userID, targetID))
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}
	return deleted, nil
}

// NotifyMatch queues a notification for both participants.
func (s *Service) NotifyMatch(ctx context.Context, match model.Match) error {
	if s.inbox == nil {
		return nil
	}

	var errs []error
	for _, userID := range match.Users {
		n := model.MatchNotification{
			MatchID:   match.ID,
			PartnerID: match.Partner(userID),
			CreatedAt: match.CreatedAt,
		}
		if err := s.inbox.Push(ctx, userID, n); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) Notifications(ctx context.Context, userID string) ([]model.MatchNotification, error) {
	if !validate.UserID(userID) {
		return nil, ErrValidation
	}
	if s.inbox == nil {
		return []model.MatchNotification{}, nil
	}

	items, err := s.inbox.Drain(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("drain notifications: %w", err)
	}
	return items, nil
}
