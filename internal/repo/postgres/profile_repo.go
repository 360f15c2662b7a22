package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainpair/backend/internal/domain/model"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var profile model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT user_id, display_name, city, interests, created_at
FROM profiles
WHERE user_id = $1
`, userID).Scan(&profile.UserID, &profile.DisplayName, &profile.City, &profile.Interests, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepo) Save(ctx context.Context, profile model.Profile, now time.Time) (model.Profile, error) {
	if strings.TrimSpace(profile.UserID) == "" {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	interests := profile.Interests
	if interests == nil {
		interests = []string{}
	}

	var saved model.Profile
	err := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	city,
	interests,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	city = EXCLUDED.city,
	interests = EXCLUDED.interests,
	updated_at = EXCLUDED.updated_at
RETURNING user_id, display_name, city, interests, created_at
`, profile.UserID, profile.DisplayName, profile.City, interests, now.UTC()).Scan(
		&saved.UserID,
		&saved.DisplayName,
		&saved.City,
		&saved.Interests,
		&saved.CreatedAt,
	)
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return saved, nil
}

// ListUnswiped pages through profiles of other users the viewer has not swiped
// yet, ordered by user id and starting after afterUserID.
func (r *ProfileRepo) ListUnswiped(ctx context.Context, viewerID, afterUserID string, limit int) ([]model.Profile, error) {
	if strings.TrimSpace(viewerID) == "" {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.user_id, p.display_name, p.city, p.interests, p.created_at
FROM profiles p
WHERE
	p.user_id <> $1
	AND p.user_id > $2
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.user_id = $1 AND s.target_id = p.user_id
	)
ORDER BY p.user_id ASC
LIMIT $3
`, viewerID, afterUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unswiped profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, limit)
	for rows.Next() {
		var item model.Profile
		if err := rows.Scan(&item.UserID, &item.DisplayName, &item.City, &item.Interests, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return items, nil
}
