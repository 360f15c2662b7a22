package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/config"
	kafkainfra "github.com/brainpair/backend/internal/infra/kafka"
	"github.com/brainpair/backend/internal/infra/metrics"
	pgrepo "github.com/brainpair/backend/internal/repo/postgres"
	redrepo "github.com/brainpair/backend/internal/repo/redis"
	authsvc "github.com/brainpair/backend/internal/services/auth"
	candidatesvc "github.com/brainpair/backend/internal/services/candidates"
	matchessvc "github.com/brainpair/backend/internal/services/matches"
	profilesvc "github.com/brainpair/backend/internal/services/profiles"
	ratesvc "github.com/brainpair/backend/internal/services/rate"
	reviewsvc "github.com/brainpair/backend/internal/services/reviews"
	streaksvc "github.com/brainpair/backend/internal/services/streaks"
	swipesvc "github.com/brainpair/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	producer   *kafkainfra.Producer
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, pgrepo.PoolOptions{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	}); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if cfg.Postgres.AutoMigrate {
			if err := pgrepo.Migrate(ctx, pool); err != nil {
				log.Warn("postgres migrations failed, continuing in degraded mode", zap.Error(err))
			}
		}
	}

	appMetrics := metrics.New()
	redisClient := redrepo.NewClient(redrepo.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rateRepo := redrepo.NewRateRepo(redisClient)
	notifyRepo := redrepo.NewNotifyRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	streakRepo := pgrepo.NewStreakRepo(pool)
	reviewRepo := pgrepo.NewReviewRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager)
	profileService := profilesvc.NewService(profileRepo)
	reviewService := reviewsvc.NewService(reviewsvc.Dependencies{
		Store:   reviewRepo,
		Matches: matchRepo,
		Logger:  log,
	}, reviewsvc.Config{})
	candidateService := candidatesvc.NewService(profileRepo, candidatesvc.Config{
		DefaultPageSize: cfg.Matching.CandidatesLimit,
	})
	candidateService.AttachRatings(reviewService)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		SwipeStore: swipeRepo,
		MatchStore: matchRepo,
		Inbox:      notifyRepo,
		Logger:     log,
	})
	streakService := streaksvc.NewService(streaksvc.Dependencies{
		Pool:    pool,
		Store:   streakRepo,
		Metrics: appMetrics,
		Logger:  log,
	}, streaksvc.Config{
		DefaultTimezone: cfg.Streak.DefaultTimezone,
	})

	swipeDeps := swipesvc.Dependencies{
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		RateLimiter: ratesvc.NewLimiter(rateRepo, cfg.Matching.SwipesPerMinute, cfg.Matching.SwipesPer10Sec),
		Notifier:    matchesService,
		Metrics:     appMetrics,
		Logger:      log,
	}

	var producer *kafkainfra.Producer
	if cfg.Kafka.Enabled {
		p, err := kafkainfra.NewProducer(kafkaConfig(cfg.Kafka), log)
		if err != nil {
			log.Warn("kafka producer init failed, swipe change events disabled", zap.Error(err))
		} else {
			producer = p
			swipeDeps.Publisher = p
		}
	}
	swipeService := swipesvc.NewService(swipeDeps, swipesvc.Config{})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		CandidateService: candidateService,
		MatchService:     matchesService,
		ProfileService:   profileService,
		ReviewService:    reviewService,
		StreakService:    streakService,
		SwipeService:     swipeService,
		Metrics:          appMetrics,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		producer:   producer,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.producer != nil {
		a.producer.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func kafkaConfig(cfg config.KafkaConfig) kafkainfra.Config {
	return kafkainfra.Config{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		ClientID: cfg.ClientID,
		Protocol: cfg.Protocol,
	}
}
