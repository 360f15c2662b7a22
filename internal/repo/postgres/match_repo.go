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
	"github.com/brainpair/backend/internal/domain/rules"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Create stores the match for the pair. A pair that is already matched keeps its
// original row and created is false.
func (r *MatchRepo) Create(ctx context.Context, userA, userB string, now time.Time) (match model.Match, created bool, err error) {
	if strings.TrimSpace(userA) == "" || strings.TrimSpace(userB) == "" || userA == userB {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return model.Match{}, false, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pair := rules.SortedPair(userA, userB)
	match = model.Match{
		ID:        rules.PairID(userA, userB),
		Users:     pair,
		CreatedAt: now.UTC(),
	}

	err = r.pool.QueryRow(ctx, `
INSERT INTO matches (
	id,
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING
RETURNING created_at
`, match.ID, pair[0], pair[1], match.CreatedAt).Scan(&match.CreatedAt)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.Get(ctx, match.ID)
	if err != nil {
		return model.Match{}, false, err
	}
	return existing, false, nil
}

func (r *MatchRepo) Get(ctx context.Context, matchID string) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	var match model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE id = $1
`, matchID).Scan(&match.ID, &match.Users[0], &match.Users[1], &match.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return match, nil
}

func (r *MatchRepo) Exists(ctx context.Context, matchID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)
`, matchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check match: %w", err)
	}

	return exists, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.Match, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 OR user_b_id = $1
ORDER BY created_at DESC, id ASC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		var item model.Match
		if err := rows.Scan(&item.ID, &item.Users[0], &item.Users[1], &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) Delete(ctx context.Context, matchID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM matches
WHERE id = $1
`, matchID)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
