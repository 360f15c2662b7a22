package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/brainpair/backend/internal/infra/metrics"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
	matchessvc "github.com/brainpair/backend/internal/services/matches"
)

const (
	defaultBatchSize = 200
	defaultPerSecond = 50
)

type ChangeSource interface {
	ListChangedSince(ctx context.Context, since time.Time, limit int) ([]pgrepo.ChangedSwiper, error)
}

type WatermarkStore interface {
	Load(ctx context.Context) (time.Time, error)
	Store(ctx context.Context, at time.Time) error
}

type UserReconciler interface {
	Reconcile(ctx context.Context, userID string) (matchessvc.ReconcileResult, error)
}

type Config struct {
	BatchSize int
	PerSecond float64
}

type Stats struct {
	Users   int
	Created int
	Failed  int
}

// Job polls swipers whose records changed since the stored watermark and runs
// the match reconciler for each of them. It covers change events that never
// reached the consumer.
type Job struct {
	source     ChangeSource
	watermarks WatermarkStore
	reconciler UserReconciler
	limiter    *rate.Limiter
	batchSize  int
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type Dependencies struct {
	Source     ChangeSource
	Watermarks WatermarkStore
	Reconciler UserReconciler
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func New(deps Dependencies, cfg Config) *Job {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = defaultPerSecond
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		source:     deps.Source,
		watermarks: deps.Watermarks,
		reconciler: deps.Reconciler,
		limiter:    rate.NewLimiter(rate.Limit(cfg.PerSecond), 1),
		batchSize:  cfg.BatchSize,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Run processes one batch. A user that fails to reconcile stops the batch
// there, and the watermark only advances past users that were handled.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	if j.source == nil || j.watermarks == nil || j.reconciler == nil {
		return Stats{}, nil
	}
	defer j.metrics.ObserveReconcile(time.Now())

	since, err := j.watermarks.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load reconcile watermark: %w", err)
	}

	changed, err := j.source.ListChangedSince(ctx, since, j.batchSize)
	if err != nil {
		return Stats{}, fmt.Errorf("list changed swipers: %w", err)
	}
	if len(changed) == 0 {
		return Stats{}, nil
	}

	stats := Stats{}
	watermark := since
	var runErr error
	for _, item := range changed {
		if err := j.limiter.Wait(ctx); err != nil {
			runErr = err
			break
		}

		res, err := j.reconciler.Reconcile(ctx, item.UserID)
		if err != nil {
			stats.Failed++
			j.metrics.IncSideEffectFailure("reconcile")
			runErr = fmt.Errorf("reconcile user %s: %w", item.UserID, err)
			break
		}
		stats.Users++
		stats.Created += len(res.Created)
		watermark = item.UpdatedAt
	}

	// Swipers sharing the last timestamp may sit just past a full batch.
	if runErr == nil && len(changed) == j.batchSize {
		if stepped := watermark.Add(-time.Microsecond); stepped.After(since) {
			watermark = stepped
		}
	}

	if watermark.After(since) {
		if err := j.watermarks.Store(ctx, watermark); err != nil {
			return stats, fmt.Errorf("store reconcile watermark: %w", err)
		}
	}

	if stats.Created > 0 || stats.Failed > 0 {
		j.logger.Info("reconcile batch completed",
			zap.Int("users", stats.Users),
			zap.Int("created", stats.Created),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats, runErr
}
