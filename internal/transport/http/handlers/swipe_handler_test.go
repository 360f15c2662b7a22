package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/brainpair/backend/internal/repo/redis"
	ratesvc "github.com/brainpair/backend/internal/services/rate"
	swipesvc "github.com/brainpair/backend/internal/services/swipes"
)

type swipeResponse struct {
	OK           bool   `json:"ok"`
	MatchCreated bool   `json:"match_created"`
	MatchID      string `json:"match_id"`
	Code         string `json:"code"`
}

func TestSwipeHandlerMutualMatch(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore: newMemorySwipes(),
		MatchStore: newMemoryMatches(),
	}, swipesvc.Config{}))

	first := performSwipe(t, h, "u1", "u2", "right")
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", first.Code)
	}
	var firstBody swipeResponse
	decodeBody(t, first, &firstBody)
	if !firstBody.OK || firstBody.MatchCreated {
		t.Fatalf("first right swipe must not match: %+v", firstBody)
	}

	second := performSwipe(t, h, "u2", "u1", "RIGHT")
	var secondBody swipeResponse
	decodeBody(t, second, &secondBody)
	if !secondBody.MatchCreated || secondBody.MatchID != "u1_u2" {
		t.Fatalf("reciprocal swipe must match: %+v", secondBody)
	}
}

func TestSwipeHandlerValidation(t *testing.T) {
	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore: newMemorySwipes(),
		MatchStore: newMemoryMatches(),
	}, swipesvc.Config{}))

	tests := []struct {
		name   string
		target string
		dir    string
	}{
		{name: "self swipe", target: "u1", dir: "right"},
		{name: "blank target", target: "", dir: "left"},
		{name: "bad direction", target: "u2", dir: "up"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := performSwipe(t, h, "u1", tc.target, tc.dir)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
			}
			var body swipeResponse
			decodeBody(t, rec, &body)
			if body.Code != "VALIDATION_ERROR" {
				t.Fatalf("unexpected code %q", body.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.Handle(rec, newAuthedRequest(t, http.MethodPost, "/swipe", "", map[string]any{"target_id": "u2", "direction": "left"}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Handle(rec, newAuthedRequest(t, http.MethodPost, "/swipe", "u1", map[string]any{"target_id": "u2", "direction": "left", "extra": 1}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestSwipeHandlerReturnsTooFast(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	h := NewSwipeHandler(swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:  newMemorySwipes(),
		MatchStore:  newMemoryMatches(),
		RateLimiter: ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 100, 2),
	}, swipesvc.Config{}))

	for _, target := range []string{"u2", "u3"} {
		if rec := performSwipe(t, h, "u1", target, "left"); rec.Code != http.StatusOK {
			t.Fatalf("unexpected status before limit: %d", rec.Code)
		}
	}

	rec := performSwipe(t, h, "u1", "u4", "left")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	decodeBody(t, rec, &payload)
	if payload.Code != "TOO_FAST" || payload.RetryAfterSec <= 0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func performSwipe(t *testing.T, h *SwipeHandler, userID, targetID, direction string) *httptest.ResponseRecorder {
	t.Helper()

	req := newAuthedRequest(t, http.MethodPost, "/swipe", userID, map[string]any{
		"target_id": targetID,
		"direction": direction,
	})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}
