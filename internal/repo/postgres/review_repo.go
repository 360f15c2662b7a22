package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainpair/backend/internal/domain/model"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Create inserts the review unless the reviewer already reviewed the target, in
// which case created is false and nothing is written.
func (r *ReviewRepo) Create(ctx context.Context, review model.Review) (model.Review, bool, error) {
	if r.pool == nil {
		return model.Review{}, false, fmt.Errorf("postgres pool is nil")
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO reviews (
	reviewer_id,
	target_id,
	rating,
	comment,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (reviewer_id, target_id) DO NOTHING
RETURNING created_at
`, review.ReviewerID, review.TargetID, review.Rating, review.Comment, review.CreatedAt.UTC()).Scan(&review.CreatedAt)
	if err == nil {
		return review, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Review{}, false, nil
	}
	return model.Review{}, false, fmt.Errorf("insert review: %w", err)
}

func (r *ReviewRepo) Exists(ctx context.Context, reviewerID, targetID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM reviews WHERE reviewer_id = $1 AND target_id = $2
)
`, reviewerID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// Summaries returns rating aggregates keyed by target id. Targets without
// reviews are absent from the map.
func (r *ReviewRepo) Summaries(ctx context.Context, targetIDs []string) (map[string]model.RatingSummary, error) {
	out := make(map[string]model.RatingSummary, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_id, COUNT(*), AVG(rating)::float8
FROM reviews
WHERE target_id = ANY($1)
GROUP BY target_id
`, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("query rating summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			targetID string
			summary  model.RatingSummary
		)
		if err := rows.Scan(&targetID, &summary.Count, &summary.Average); err != nil {
			return nil, fmt.Errorf("scan rating summary: %w", err)
		}
		out[targetID] = summary
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate rating summaries: %w", rows.Err())
	}
	return out, nil
}

func (r *ReviewRepo) ListRecent(ctx context.Context, targetID string, limit int) ([]model.Review, error) {
	if limit <= 0 {
		limit = 3
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT reviewer_id, target_id, rating, comment, created_at
FROM reviews
WHERE target_id = $1
ORDER BY created_at DESC, reviewer_id ASC
LIMIT $2
`, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]model.Review, 0, limit)
	for rows.Next() {
		var item model.Review
		if err := rows.Scan(&item.ReviewerID, &item.TargetID, &item.Rating, &item.Comment, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reviews: %w", rows.Err())
	}
	return items, nil
}
