package handlers

import (
	"errors"
	"net/http"

	"github.com/brainpair/backend/internal/domain/model"
	authsvc "github.com/brainpair/backend/internal/services/auth"
	profilesvc "github.com/brainpair/backend/internal/services/profiles"
	"github.com/brainpair/backend/internal/transport/http/dto"
	httperrors "github.com/brainpair/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	profile, err := h.service.Save(r.Context(), identity.UserID, profilesvc.Input{
		DisplayName: req.DisplayName,
		City:        req.City,
		Interests:   req.Interests,
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to save profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile))
}

func profileResponse(profile model.Profile) dto.ProfileResponse {
	interests := profile.Interests
	if interests == nil {
		interests = []string{}
	}
	return dto.ProfileResponse{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		City:        profile.City,
		Interests:   interests,
		CreatedAt:   profile.CreatedAt,
	}
}
