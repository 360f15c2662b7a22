package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

type ChangedSwiper struct {
	UserID    string
	UpdatedAt time.Time
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Merge writes direction under targetID in the swiper's record. Other targets
// are left as they are.
func (r *SwipeRepo) Merge(ctx context.Context, userID, targetID string, direction enums.SwipeDirection, now time.Time) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" || direction == "" {
		return fmt.Errorf("invalid swipe payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO swipes (
	user_id,
	target_id,
	direction,
	updated_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, target_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	updated_at = EXCLUDED.updated_at
`, userID, targetID, string(direction), now.UTC())
	if err != nil {
		return fmt.Errorf("merge swipe: %w", err)
	}

	return nil
}

// Record returns every swipe the user has made. A user who never swiped has an
// empty record.
func (r *SwipeRepo) Record(ctx context.Context, userID string) (model.SwipeRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_id, direction
FROM swipes
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("load swipe record: %w", err)
	}
	defer rows.Close()

	record := model.SwipeRecord{}
	for rows.Next() {
		var (
			targetID  string
			direction string
		)
		if err := rows.Scan(&targetID, &direction); err != nil {
			return nil, fmt.Errorf("scan swipe: %w", err)
		}
		record[targetID] = enums.SwipeDirection(direction)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swipes: %w", rows.Err())
	}

	return record, nil
}

// ListChangedSince returns swipers whose record changed after since, oldest
// change first.
func (r *SwipeRepo) ListChangedSince(ctx context.Context, since time.Time, limit int) ([]ChangedSwiper, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ChangedSwiper{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, MAX(updated_at) AS changed_at
FROM swipes
WHERE updated_at > $1
GROUP BY user_id
ORDER BY changed_at ASC, user_id ASC
LIMIT $2
`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list changed swipers: %w", err)
	}
	defer rows.Close()

	items := make([]ChangedSwiper, 0, limit)
	for rows.Next() {
		var item ChangedSwiper
		if err := rows.Scan(&item.UserID, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan changed swiper: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate changed swipers: %w", rows.Err())
	}

	return items, nil
}
