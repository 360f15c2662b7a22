package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brainpair/backend/internal/config"
	"github.com/brainpair/backend/internal/infra/metrics"
	authsvc "github.com/brainpair/backend/internal/services/auth"
	candidatesvc "github.com/brainpair/backend/internal/services/candidates"
	matchessvc "github.com/brainpair/backend/internal/services/matches"
	profilesvc "github.com/brainpair/backend/internal/services/profiles"
	reviewsvc "github.com/brainpair/backend/internal/services/reviews"
	streaksvc "github.com/brainpair/backend/internal/services/streaks"
	swipesvc "github.com/brainpair/backend/internal/services/swipes"
	"github.com/brainpair/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	CandidateService *candidatesvc.Service
	MatchService     *matchessvc.Service
	ProfileService   *profilesvc.Service
	ReviewService    *reviewsvc.Service
	StreakService    *streaksvc.Service
	SwipeService     *swipesvc.Service
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	candidateHandler := handlers.NewCandidateHandler(deps.CandidateService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	streakHandler := handlers.NewStreakHandler(deps.StreakService)
	reviewHandler := handlers.NewReviewHandler(deps.ReviewService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", deps.Metrics.Handler())

	r.With(authMW).Get("/profile", profileHandler.Get)
	r.With(authMW).Put("/profile", profileHandler.Save)
	r.With(authMW).Get("/candidates", candidateHandler.List)
	r.With(authMW).Post("/swipe", swipeHandler.Handle)
	r.With(authMW).Get("/matches", matchesHandler.Handle)
	r.With(authMW).Get("/matches/notifications", matchesHandler.Notifications)
	r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)
	r.With(authMW).Get("/streak", streakHandler.Get)
	r.With(authMW).Post("/streak/activity", streakHandler.RecordActivity)
	r.With(authMW).Get("/streak/calendar", streakHandler.Calendar)
	r.With(authMW).Post("/reviews", reviewHandler.Submit)
	r.With(authMW).Get("/reviews/status", reviewHandler.Status)
	r.With(authMW).Get("/users/{user_id}/reviews", reviewHandler.Overview)

	if !deps.Config.IsProduction() {
		r.Post("/dev/token", authHandler.DevToken)
	}
}
