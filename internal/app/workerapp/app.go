package workerapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/config"
	kafkainfra "github.com/brainpair/backend/internal/infra/kafka"
	"github.com/brainpair/backend/internal/infra/metrics"
	"github.com/brainpair/backend/internal/jobs/reconcile"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
	redrepo "github.com/brainpair/backend/internal/repo/redis"
	matchessvc "github.com/brainpair/backend/internal/services/matches"
)

type runner interface {
	Run(ctx context.Context) (reconcile.Stats, error)
}

type App struct {
	cfg           config.Config
	logger        *zap.Logger
	postgres      *pgxpool.Pool
	redis         *goredis.Client
	consumer      *kafkainfra.Consumer
	reconciler    *matchessvc.Reconciler
	reconcileJob  runner
	metrics       *metrics.Metrics
	metricsServer *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, pgrepo.PoolOptions{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("init postgres for worker app: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err := pgrepo.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	appMetrics := metrics.New()
	redisClient := redrepo.NewClient(redrepo.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		SwipeStore: swipeRepo,
		MatchStore: matchRepo,
		Inbox:      redrepo.NewNotifyRepo(redisClient),
		Logger:     logger,
	})
	reconciler := matchessvc.NewReconciler(matchessvc.ReconcilerDependencies{
		SwipeStore: swipeRepo,
		MatchStore: matchRepo,
		Notifier:   matchesService,
		Metrics:    appMetrics,
		Logger:     logger,
	})
	reconcileJob := reconcile.New(reconcile.Dependencies{
		Source:     swipeRepo,
		Watermarks: redrepo.NewWatermarkRepo(redisClient, ""),
		Reconciler: reconciler,
		Metrics:    appMetrics,
		Logger:     logger,
	}, reconcile.Config{
		BatchSize: cfg.Reconcile.BatchSize,
		PerSecond: cfg.Reconcile.PerSecond,
	})

	var consumer *kafkainfra.Consumer
	if cfg.Kafka.Enabled {
		consumer, err = kafkainfra.NewConsumer(kafkainfra.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			GroupID:  cfg.Kafka.GroupID,
			ClientID: cfg.Kafka.ClientID,
			Protocol: cfg.Kafka.Protocol,
		}, logger)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka consumer: %w", err)
		}
	} else {
		logger.Warn("kafka disabled, match trigger runs on the polling reconciler only")
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		postgres:     pool,
		redis:        redisClient,
		consumer:     consumer,
		reconciler:   reconciler,
		reconcileJob: reconcileJob,
		metrics:      appMetrics,
		metricsServer: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           appMetrics.Handler(),
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker app started")

	errCh := make(chan error, 3)
	go func() {
		errCh <- a.runReconcileLoop(ctx)
	}()

	if a.consumer != nil {
		go func() {
			errCh <- a.consumer.Run(ctx, a.handleSwipeChanged)
		}()
	}

	go func() {
		err := a.metricsServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = a.metricsServer.Shutdown(shutdownCtx)
			cancel()
			a.logger.Info("worker app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) handleSwipeChanged(ctx context.Context, msg *kafka.Message) error {
	return a.reconciler.HandleSwipeChanged(ctx, msg.Value)
}

// Reconcile errors are logged and retried on the next tick.
func (a *App) runReconcileLoop(ctx context.Context) error {
	if a.reconcileJob == nil {
		return nil
	}

	interval := a.cfg.Reconcile.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	a.runReconcileOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.runReconcileOnce(ctx)
		}
	}
}

func (a *App) runReconcileOnce(ctx context.Context) {
	if _, err := a.reconcileJob.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("reconcile batch failed", zap.Error(err))
	}
}

func (a *App) Close() {
	if a.consumer != nil {
		a.consumer.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
