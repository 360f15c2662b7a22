package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	"github.com/brainpair/backend/internal/pkg/validate"
)

const (
	minRating          = 1
	maxRating          = 5
	defaultCommentSize = 1000
	defaultRecentLimit = 3
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotMatched      = errors.New("users are not matched")
	ErrAlreadyReviewed = errors.New("target already reviewed")
	ErrDependenciesNil = errors.New("review dependencies are not configured")
)

type Store interface {
	Create(ctx context.Context, review model.Review) (model.Review, bool, error)
	Exists(ctx context.Context, reviewerID, targetID string) (bool, error)
	Summaries(ctx context.Context, targetIDs []string) (map[string]model.RatingSummary, error)
	ListRecent(ctx context.Context, targetID string, limit int) ([]model.Review, error)
}

type MatchChecker interface {
	Exists(ctx context.Context, matchID string) (bool, error)
}

type Dependencies struct {
	Store   Store
	Matches MatchChecker
	Logger  *zap.Logger
}

type Config struct {
	MaxCommentRunes int
	RecentLimit     int
}

type Overview struct {
	Summary model.RatingSummary
	Recent  []model.Review
}

type Service struct {
	store   Store
	matches MatchChecker
	logger  *zap.Logger
	cfg     Config
	now     func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxCommentRunes <= 0 {
		cfg.MaxCommentRunes = defaultCommentSize
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:   deps.Store,
		matches: deps.Matches,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Submit stores a review of a matched partner. Each reviewer reviews a target
// once; a second submission returns ErrAlreadyReviewed.
func (s *Service) Submit(ctx context.Context, reviewerID, targetID string, rating int, comment string) (model.Review, error) {
	if !validate.UserID(reviewerID) || !validate.UserID(targetID) || reviewerID == targetID {
		return model.Review{}, ErrValidation
	}
	if rating < minRating || rating > maxRating {
		return model.Review{}, ErrValidation
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > s.cfg.MaxCommentRunes {
		return model.Review{}, ErrValidation
	}
	if s.store == nil || s.matches == nil {
		return model.Review{}, ErrDependenciesNil
	}

	matched, err := s.matches.Exists(ctx, rules.PairID(reviewerID, targetID))
	if err != nil {
		return model.Review{}, fmt.Errorf("check match: %w", err)
	}
	if !matched {
		return model.Review{}, ErrNotMatched
	}

	review, created, err := s.store.Create(ctx, model.Review{
		ReviewerID: reviewerID,
		TargetID:   targetID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return model.Review{}, fmt.Errorf("create review: %w", err)
	}
	if !created {
		return model.Review{}, ErrAlreadyReviewed
	}

	s.logger.Debug("review submitted",
		zap.String("reviewer_id", reviewerID),
		zap.String("target_id", targetID),
		zap.Int("rating", rating),
	)
	return review, nil
}

func (s *Service) HasReviewed(ctx context.Context, reviewerID, targetID string) (bool, error) {
	if !validate.UserID(reviewerID) || !validate.UserID(targetID) {
		return false, ErrValidation
	}
	if s.store == nil {
		return false, ErrDependenciesNil
	}

	exists, err := s.store.Exists(ctx, reviewerID, targetID)
	if err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// Summaries returns a summary for every requested id; users without reviews get
// a zero summary. Averages are rounded to one decimal.
func (s *Service) Summaries(ctx context.Context, targetIDs []string) (map[string]model.RatingSummary, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}

	stored, err := s.store.Summaries(ctx, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("load rating summaries: %w", err)
	}

	out := make(map[string]model.RatingSummary, len(targetIDs))
	for _, id := range targetIDs {
		summary := stored[id]
		summary.Average = roundRating(summary.Average)
		out[id] = summary
	}
	return out, nil
}

func (s *Service) Overview(ctx context.Context, targetID string) (Overview, error) {
	if !validate.UserID(targetID) {
		return Overview{}, ErrValidation
	}

	summaries, err := s.Summaries(ctx, []string{targetID})
	if err != nil {
		return Overview{}, err
	}

	recent, err := s.store.ListRecent(ctx, targetID, s.cfg.RecentLimit)
	if err != nil {
		return Overview{}, fmt.Errorf("list recent reviews: %w", err)
	}

	return Overview{Summary: summaries[targetID], Recent: recent}, nil
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
