package streaks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	"github.com/brainpair/backend/internal/infra/metrics"
	"github.com/brainpair/backend/internal/pkg/validate"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
)

const maxCalendarSpanDays = 366

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("streak dependencies are not configured")
)

type Store interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID string) (model.StreakState, error)
	Save(ctx context.Context, tx pgx.Tx, state model.StreakState) error
	ListActivityDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
}

type Config struct {
	DefaultTimezone string
}

type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Dependencies struct {
	Pool *pgxpool.Pool
	// TxRunner replaces the pool transaction when set.
	TxRunner TxRunner
	Store    Store
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Result struct {
	State  model.StreakState
	Change rules.StreakChange
}

type CalendarResult struct {
	From   time.Time
	To     time.Time
	Dates  []time.Time
	Streak int
}

type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     Config
	now     func() time.Time
	withTx  TxRunner
}

func NewService(deps Dependencies, cfg Config) *Service {
	if strings.TrimSpace(cfg.DefaultTimezone) == "" {
		cfg.DefaultTimezone = "UTC"
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	withTx := deps.TxRunner
	if withTx == nil {
		pool := deps.Pool
		withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		}
	}

	return &Service{
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		withTx:  withTx,
	}
}

// RecordActivity marks today as studied for the user. Repeating it on the same
// calendar day returns the stored state with outcome already_recorded.
func (s *Service) RecordActivity(ctx context.Context, userID, timezone string) (Result, error) {
	if !validate.UserID(userID) {
		return Result{}, ErrValidation
	}
	if s.store == nil {
		return Result{}, ErrDependenciesNil
	}

	loc := s.resolveTimezone(timezone)
	now := s.now()

	var out Result
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		state, err := s.store.GetForUpdate(txCtx, tx, userID)
		if err != nil {
			return err
		}

		next, change := rules.RecordActivity(state, now, loc)
		out = Result{State: next, Change: change}
		if change.Outcome == enums.StreakAlreadyRecorded {
			return nil
		}
		return s.store.Save(txCtx, tx, next)
	}); err != nil {
		return Result{}, fmt.Errorf("record study activity: %w", err)
	}

	s.metrics.IncStreakOutcome(string(out.Change.Outcome))
	if out.Change.Outcome == enums.StreakReset {
		s.logger.Debug("study streak reset",
			zap.String("user_id", userID),
			zap.Int("prior_streak", out.Change.PriorStreak),
		)
	}
	return out, nil
}

// Load returns the streak as seen now, expiring a stale one. The stored row is
// only written when the view changed it.
func (s *Service) Load(ctx context.Context, userID, timezone string) (Result, error) {
	if !validate.UserID(userID) {
		return Result{}, ErrValidation
	}
	if s.store == nil {
		return Result{}, ErrDependenciesNil
	}

	loc := s.resolveTimezone(timezone)
	now := s.now()

	var out Result
	if err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		state, err := s.store.GetForUpdate(txCtx, tx, userID)
		if err != nil {
			return err
		}

		next, change := rules.ReconcileOnLoad(state, now, loc)
		out = Result{State: next, Change: change}
		if !changed(state, next) {
			return nil
		}
		return s.store.Save(txCtx, tx, next)
	}); err != nil {
		return Result{}, fmt.Errorf("load study streak: %w", err)
	}

	if out.Change.Outcome == enums.StreakExpired {
		s.metrics.IncStreakOutcome(string(out.Change.Outcome))
	}
	return out, nil
}

// Calendar lists activity dates in [from, to] and the run of consecutive days
// ending today derived from all recorded dates.
func (s *Service) Calendar(ctx context.Context, userID string, from, to time.Time, timezone string) (CalendarResult, error) {
	if !validate.UserID(userID) {
		return CalendarResult{}, ErrValidation
	}
	if s.store == nil {
		return CalendarResult{}, ErrDependenciesNil
	}

	loc := s.resolveTimezone(timezone)
	now := s.now()
	today := rules.CalendarDate(now, loc)

	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	from = rules.CalendarDate(from, time.UTC)
	to = rules.CalendarDate(to, time.UTC)
	if to.Before(from) || rules.DaysBetween(from, to) > maxCalendarSpanDays {
		return CalendarResult{}, ErrValidation
	}

	dates, err := s.store.ListActivityDates(ctx, userID, from, to)
	if err != nil {
		return CalendarResult{}, fmt.Errorf("list activity dates: %w", err)
	}

	history, err := s.store.ListActivityDates(ctx, userID, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), today)
	if err != nil {
		return CalendarResult{}, fmt.Errorf("list activity history: %w", err)
	}

	return CalendarResult{
		From:   from,
		To:     to,
		Dates:  dates,
		Streak: rules.ConsecutiveDays(history, now, loc),
	}, nil
}

func (s *Service) resolveTimezone(explicit string) *time.Location {
	candidate := strings.TrimSpace(explicit)
	if candidate == "" {
		candidate = strings.TrimSpace(s.cfg.DefaultTimezone)
	}

	loc, err := time.LoadLocation(candidate)
	if err != nil {
		return time.UTC
	}
	return loc
}

func changed(before, after model.StreakState) bool {
	if before.Current != after.Current || before.Longest != after.Longest {
		return true
	}
	return (before.LastActiveDate == nil) != (after.LastActiveDate == nil)
}
