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

type StreakRepo struct {
	pool *pgxpool.Pool
}

func NewStreakRepo(pool *pgxpool.Pool) *StreakRepo {
	return &StreakRepo{pool: pool}
}

// GetForUpdate locks the user's streak row for the rest of tx. A user without a
// row gets a zero state.
func (r *StreakRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID string) (model.StreakState, error) {
	if strings.TrimSpace(userID) == "" {
		return model.StreakState{}, fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return model.StreakState{}, fmt.Errorf("transaction is required")
	}

	state := model.StreakState{UserID: userID}
	err := tx.QueryRow(ctx, `
SELECT current_streak, longest_streak, last_active_date
FROM study_streaks
WHERE user_id = $1
FOR UPDATE
`, userID).Scan(&state.Current, &state.Longest, &state.LastActiveDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StreakState{UserID: userID}, nil
		}
		return model.StreakState{}, fmt.Errorf("get streak for update: %w", err)
	}

	return state, nil
}

// Save writes the counters and, when the state has a last active date, adds it
// to the user's activity dates.
func (r *StreakRepo) Save(ctx context.Context, tx pgx.Tx, state model.StreakState) error {
	if strings.TrimSpace(state.UserID) == "" {
		return fmt.Errorf("invalid user id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO study_streaks (
	user_id,
	current_streak,
	longest_streak,
	last_active_date,
	updated_at
) VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	current_streak = EXCLUDED.current_streak,
	longest_streak = EXCLUDED.longest_streak,
	last_active_date = EXCLUDED.last_active_date,
	updated_at = NOW()
`, state.UserID, state.Current, state.Longest, state.LastActiveDate); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}

	if state.LastActiveDate == nil {
		return nil
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO study_activity_dates (user_id, activity_date)
VALUES ($1, $2)
ON CONFLICT (user_id, activity_date) DO NOTHING
`, state.UserID, *state.LastActiveDate); err != nil {
		return fmt.Errorf("save activity date: %w", err)
	}

	return nil
}

// ListActivityDates returns activity dates within [from, to], oldest first.
func (r *StreakRepo) ListActivityDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []time.Time{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT activity_date
FROM study_activity_dates
WHERE user_id = $1 AND activity_date BETWEEN $2 AND $3
ORDER BY activity_date ASC
`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list activity dates: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0, 32)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan activity date: %w", err)
		}
		dates = append(dates, d.UTC())
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate activity dates: %w", rows.Err())
	}

	return dates, nil
}
