package candidates

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	"github.com/brainpair/backend/internal/pkg/validate"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	scanPageSize    = 100
	maxScanPages    = 5
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidCursor = errors.New("invalid cursor")
)

type Repository interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	ListUnswiped(ctx context.Context, viewerID, afterUserID string, limit int) ([]model.Profile, error)
}

// RatingSource supplies review summaries for candidate cards.
type RatingSource interface {
	Summaries(ctx context.Context, userIDs []string) (map[string]model.RatingSummary, error)
}

type Config struct {
	// DefaultPageSize applies when the caller passes no limit.
	DefaultPageSize int
	ScanPageSize    int
	MaxScanPages    int
}

type Service struct {
	repo    Repository
	ratings RatingSource
	cfg     Config
}

type Item struct {
	UserID      string
	DisplayName string
	City        string
	Interests   []string
	Rating      model.RatingSummary
}

type Result struct {
	Items      []Item
	NextCursor string
}

type pageCursor struct {
	UserID string `json:"i"`
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > maxPageSize {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.ScanPageSize <= 0 {
		cfg.ScanPageSize = scanPageSize
	}
	if cfg.MaxScanPages <= 0 {
		cfg.MaxScanPages = maxScanPages
	}
	return &Service{repo: repo, cfg: cfg}
}

func (s *Service) AttachRatings(ratings RatingSource) {
	s.ratings = ratings
}

// List returns profiles the user has not swiped yet that share at least one
// interest with the user. A scan stops after MaxScanPages pages of unswiped
// profiles even when fewer than limit items matched; NextCursor then points
// past the last scanned profile.
func (s *Service) List(ctx context.Context, userID, cursor string, limit int) (Result, error) {
	if !validate.UserID(userID) {
		return Result{}, ErrValidation
	}
	if s.repo == nil {
		return Result{}, fmt.Errorf("candidates repository is nil")
	}
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	after, err := decodeCursor(cursor)
	if err != nil {
		return Result{}, err
	}

	viewer, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return Result{Items: []Item{}}, nil
		}
		return Result{}, fmt.Errorf("get viewer profile: %w", err)
	}
	if len(viewer.Interests) == 0 {
		return Result{Items: []Item{}}, nil
	}

	items := make([]Item, 0, limit)
	lastScanned := after
	exhausted := false
	for page := 0; page < s.cfg.MaxScanPages && len(items) < limit; page++ {
		profiles, err := s.repo.ListUnswiped(ctx, userID, lastScanned, s.cfg.ScanPageSize)
		if err != nil {
			return Result{}, fmt.Errorf("list unswiped profiles: %w", err)
		}

		for _, profile := range profiles {
			lastScanned = profile.UserID
			if !rules.HasCommonInterest(viewer.Interests, profile.Interests) {
				continue
			}
			items = append(items, Item{
				UserID:      profile.UserID,
				DisplayName: profile.DisplayName,
				City:        profile.City,
				Interests:   profile.Interests,
			})
			if len(items) == limit {
				break
			}
		}

		if len(profiles) < s.cfg.ScanPageSize {
			// The last page may still hold rows after the item that filled the limit.
			exhausted = len(items) < limit || lastScanned == profiles[len(profiles)-1].UserID
			break
		}
	}

	if err := s.attachRatings(ctx, items); err != nil {
		return Result{}, err
	}

	result := Result{Items: items}
	if !exhausted && lastScanned != after {
		next, err := encodeCursor(pageCursor{UserID: lastScanned})
		if err != nil {
			return Result{}, err
		}
		result.NextCursor = next
	}
	return result, nil
}

func (s *Service) attachRatings(ctx context.Context, items []Item) error {
	if s.ratings == nil || len(items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UserID)
	}
	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return fmt.Errorf("load candidate ratings: %w", err)
	}
	for i := range items {
		items[i].Rating = summaries[items[i].UserID]
	}
	return nil
}

func decodeCursor(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrInvalidCursor
	}

	var cursor pageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return "", ErrInvalidCursor
	}
	if !validate.UserID(cursor.UserID) {
		return "", ErrInvalidCursor
	}
	return cursor.UserID, nil
}

func encodeCursor(cursor pageCursor) (string, error) {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshal candidates cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}
