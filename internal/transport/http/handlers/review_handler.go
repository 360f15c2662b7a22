package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brainpair/backend/internal/domain/model"
	authsvc "github.com/brainpair/backend/internal/services/auth"
	reviewsvc "github.com/brainpair/backend/internal/services/reviews"
	"github.com/brainpair/backend/internal/transport/http/dto"
	httperrors "github.com/brainpair/backend/internal/transport/http/errors"
)

type ReviewHandler struct {
	service *reviewsvc.Service
}

func NewReviewHandler(service *reviewsvc.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	var req dto.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	review, err := h.service.Submit(r.Context(), identity.UserID, strings.TrimSpace(req.TargetID), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, reviewsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "rating must be 1-5 and target must be another user")
		case errors.Is(err, reviewsvc.ErrNotMatched):
			httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
				Code:    "NOT_MATCHED",
				Message: "only matched partners can be reviewed",
			})
		case errors.Is(err, reviewsvc.ErrAlreadyReviewed):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ALREADY_REVIEWED",
				Message: "you have already reviewed this user",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to submit review")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ReviewResponse{OK: true, Review: reviewItem(review)})
}

func (h *ReviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	reviewed, err := h.service.HasReviewed(r.Context(), identity.UserID, strings.TrimSpace(r.URL.Query().Get("target_id")))
	if err != nil {
		if errors.Is(err, reviewsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to check review")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewStatusResponse{Reviewed: reviewed})
}

func (h *ReviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		if errors.Is(err, reviewsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load reviews")
		return
	}

	recent := make([]dto.ReviewItem, 0, len(overview.Recent))
	for _, review := range overview.Recent {
		recent = append(recent, reviewItem(review))
	}
	httperrors.Write(w, http.StatusOK, dto.ReviewOverviewResponse{
		UserID:        userID,
		ReviewCount:   overview.Summary.Count,
		AverageRating: overview.Summary.Average,
		Recent:        recent,
	})
}

func reviewItem(review model.Review) dto.ReviewItem {
	return dto.ReviewItem{
		ReviewerID: review.ReviewerID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
