package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brainpair/backend/internal/domain/model"
	candidatesvc "github.com/brainpair/backend/internal/services/candidates"
	reviewsvc "github.com/brainpair/backend/internal/services/reviews"
)

type memoryReviews struct {
	reviews []model.Review
}

func (s *memoryReviews) Create(_ context.Context, review model.Review) (model.Review, bool, error) {
	for _, existing := range s.reviews {
		if existing.ReviewerID == review.ReviewerID && existing.TargetID == review.TargetID {
			return model.Review{}, false, nil
		}
	}
	s.reviews = append(s.reviews, review)
	return review, true, nil
}

func (s *memoryReviews) Exists(_ context.Context, reviewerID, targetID string) (bool, error) {
	for _, existing := range s.reviews {
		if existing.ReviewerID == reviewerID && existing.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryReviews) Summaries(_ context.Context, targetIDs []string) (map[string]model.RatingSummary, error) {
	out := map[string]model.RatingSummary{}
	for _, id := range targetIDs {
		total := 0
		summary := model.RatingSummary{}
		for _, review := range s.reviews {
			if review.TargetID == id {
				summary.Count++
				total += review.Rating
			}
		}
		if summary.Count > 0 {
			summary.Average = float64(total) / float64(summary.Count)
			out[id] = summary
		}
	}
	return out, nil
}

func (s *memoryReviews) ListRecent(_ context.Context, targetID string, limit int) ([]model.Review, error) {
	out := []model.Review{}
	for _, review := range s.reviews {
		if review.TargetID == targetID {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestReviewHandlerSubmit(t *testing.T) {
	matches := newMemoryMatches()
	if _, _, err := matches.Create(context.Background(), "amy", "bob", time.Now()); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	h := NewReviewHandler(reviewsvc.NewService(reviewsvc.Dependencies{
		Store:   &memoryReviews{},
		Matches: matches,
	}, reviewsvc.Config{}))

	tests := []struct {
		name     string
		userID   string
		body     any
		wantCode int
		wantErr  string
	}{
		{name: "created", userID: "amy", body: map[string]any{"target_id": "bob", "rating": 5, "comment": "helpful"}, wantCode: http.StatusCreated},
		{name: "duplicate", userID: "amy", body: map[string]any{"target_id": "bob", "rating": 2}, wantCode: http.StatusConflict, wantErr: "ALREADY_REVIEWED"},
		{name: "not matched", userID: "amy", body: map[string]any{"target_id": "cleo", "rating": 4}, wantCode: http.StatusForbidden, wantErr: "NOT_MATCHED"},
		{name: "rating out of range", userID: "bob", body: map[string]any{"target_id": "amy", "rating": 9}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR"},
		{name: "unknown field", userID: "bob", body: map[string]any{"target_id": "amy", "rating": 3, "stars": 3}, wantCode: http.StatusBadRequest, wantErr: "VALIDATION_ERROR"},
		{name: "anonymous", userID: "", body: map[string]any{"target_id": "amy", "rating": 3}, wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Submit(rec, newAuthedRequest(t, http.MethodPost, "/reviews", tc.userID, tc.body))
			if rec.Code != tc.wantCode {
				t.Fatalf("unexpected status: got %d want %d body=%s", rec.Code, tc.wantCode, rec.Body.String())
			}
			if tc.wantErr == "" {
				return
			}
			var body struct {
				Code string `json:"code"`
			}
			decodeBody(t, rec, &body)
			if body.Code != tc.wantErr {
				t.Fatalf("unexpected error code: %q", body.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.Status(rec, newAuthedRequest(t, http.MethodGet, "/reviews/status?target_id=bob", "amy", nil))
	var status struct {
		Reviewed bool `json:"reviewed"`
	}
	decodeBody(t, rec, &status)
	if rec.Code != http.StatusOK || !status.Reviewed {
		t.Fatalf("expected amy to have reviewed bob: %d %+v", rec.Code, status)
	}

	rec = httptest.NewRecorder()
	h.Status(rec, newAuthedRequest(t, http.MethodGet, "/reviews/status", "amy", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without target_id, got %d", rec.Code)
	}
}

func TestReviewSummaryOnCandidatesAndOverview(t *testing.T) {
	matches := newMemoryMatches()
	for _, reviewer := range []string{"amy", "bob"} {
		if _, _, err := matches.Create(context.Background(), reviewer, "cleo", time.Now()); err != nil {
			t.Fatalf("seed match: %v", err)
		}
	}
	reviews := reviewsvc.NewService(reviewsvc.Dependencies{
		Store:   &memoryReviews{},
		Matches: matches,
	}, reviewsvc.Config{})
	for reviewer, rating := range map[string]int{"amy": 5, "bob": 4} {
		if _, err := reviews.Submit(context.Background(), reviewer, "cleo", rating, ""); err != nil {
			t.Fatalf("submit from %s: %v", reviewer, err)
		}
	}

	profiles := &memoryProfiles{profiles: map[string]model.Profile{
		"dan":  {UserID: "dan", DisplayName: "Dan", Interests: []string{"Calculus"}},
		"cleo": {UserID: "cleo", DisplayName: "Cleo", Interests: []string{"Calculus"}},
		"eve":  {UserID: "eve", DisplayName: "Eve", Interests: []string{"Calculus"}},
	}}
	candidateService := candidatesvc.NewService(profiles, candidatesvc.Config{})
	candidateService.AttachRatings(reviews)

	rec := httptest.NewRecorder()
	NewCandidateHandler(candidateService).List(rec, newAuthedRequest(t, http.MethodGet, "/candidates", "dan", nil))
	var feed struct {
		Items []struct {
			UserID        string  `json:"user_id"`
			ReviewCount   int     `json:"review_count"`
			AverageRating float64 `json:"average_rating"`
		} `json:"items"`
	}
	decodeBody(t, rec, &feed)
	if len(feed.Items) != 2 {
		t.Fatalf("unexpected candidates: %+v", feed.Items)
	}
	if feed.Items[0].UserID != "cleo" || feed.Items[0].ReviewCount != 2 || feed.Items[0].AverageRating != 4.5 {
		t.Fatalf("unexpected rating for cleo: %+v", feed.Items[0])
	}
	if feed.Items[1].ReviewCount != 0 || feed.Items[1].AverageRating != 0 {
		t.Fatalf("expected no reviews for eve: %+v", feed.Items[1])
	}

	r := chi.NewRouter()
	r.Get("/users/{user_id}/reviews", NewReviewHandler(reviews).Overview)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, newAuthedRequest(t, http.MethodGet, "/users/cleo/reviews", "dan", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected overview status: %d", rec.Code)
	}
	var overview struct {
		UserID        string  `json:"user_id"`
		ReviewCount   int     `json:"review_count"`
		AverageRating float64 `json:"average_rating"`
		Recent        []struct {
			ReviewerID string `json:"reviewer_id"`
		} `json:"recent"`
	}
	decodeBody(t, rec, &overview)
	if overview.UserID != "cleo" || overview.ReviewCount != 2 || overview.AverageRating != 4.5 || len(overview.Recent) != 2 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
}
