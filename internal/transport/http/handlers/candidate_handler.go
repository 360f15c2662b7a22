package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/brainpair/backend/internal/services/auth"
	candidatesvc "github.com/brainpair/backend/internal/services/candidates"
	"github.com/brainpair/backend/internal/transport/http/dto"
	httperrors "github.com/brainpair/backend/internal/transport/http/errors"
)

type CandidateHandler struct {
	service *candidatesvc.Service
}

func NewCandidateHandler(service *candidatesvc.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	query := r.URL.Query()
	result, err := h.service.List(r.Context(), identity.UserID, query.Get("cursor"), parseIntOrDefault(query.Get("limit"), 0))
	if err != nil {
		switch {
		case errors.Is(err, candidatesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid candidates request")
		case errors.Is(err, candidatesvc.ErrInvalidCursor):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid cursor")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load candidates")
		}
		return
	}

	items := make([]dto.CandidateItem, 0, len(result.Items))
	for _, item := range result.Items {
		interests := item.Interests
		if interests == nil {
			interests = []string{}
		}
		items = append(items, dto.CandidateItem{
			UserID:        item.UserID,
			DisplayName:   item.DisplayName,
			City:          item.City,
			Interests:     interests,
			ReviewCount:   item.Rating.Count,
			AverageRating: item.Rating.Average,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	})
}
