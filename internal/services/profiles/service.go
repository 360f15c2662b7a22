package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/pkg/validate"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
)

const (
	maxInterests      = 2
	maxInterestLen    = 64
	maxDisplayNameLen = 80
	maxCityLen        = 80
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	Save(ctx context.Context, profile model.Profile, now time.Time) (model.Profile, error)
}

type Service struct {
	store ProfileStore
	now   func() time.Time
}

type Input struct {
	DisplayName string
	City        string
	Interests   []string
}

func NewService(store ProfileStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (model.Profile, error) {
	if !validate.UserID(userID) {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *Service) Save(ctx context.Context, userID string, in Input) (model.Profile, error) {
	if !validate.UserID(userID) {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := normalizeInput(userID, in)
	if err != nil {
		return model.Profile{}, err
	}

	saved, err := s.store.Save(ctx, profile, s.now().UTC())
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}

func normalizeInput(userID string, in Input) (model.Profile, error) {
	out := model.Profile{
		UserID:      userID,
		DisplayName: strings.TrimSpace(in.DisplayName),
		City:        strings.TrimSpace(in.City),
	}

	if out.DisplayName == "" {
		return model.Profile{}, fmt.Errorf("display_name is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(out.DisplayName) > maxDisplayNameLen {
		return model.Profile{}, fmt.Errorf("display_name is too long: %w", ErrValidation)
	}
	if utf8.RuneCountInString(out.City) > maxCityLen {
		return model.Profile{}, fmt.Errorf("city is too long: %w", ErrValidation)
	}

	interests, err := normalizeInterests(in.Interests)
	if err != nil {
		return model.Profile{}, err
	}
	out.Interests = interests

	return out, nil
}

// Tags keep their case; matching compares them exactly.
func normalizeInterests(values []string) ([]string, error) {
	result := make([]string, 0, maxInterests)
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		tag := strings.TrimSpace(value)
		if tag == "" {
			continue
		}
		if len(tag) > maxInterestLen {
			return nil, fmt.Errorf("interest %q is too long: %w", tag, ErrValidation)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	if len(result) > maxInterests {
		return nil, fmt.Errorf("at most %d interests are allowed: %w", maxInterests, ErrValidation)
	}
	return result, nil
}
