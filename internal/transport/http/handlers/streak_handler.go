package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/rules"
	authsvc "github.com/brainpair/backend/internal/services/auth"
	streaksvc "github.com/brainpair/backend/internal/services/streaks"
	"github.com/brainpair/backend/internal/transport/http/dto"
	httperrors "github.com/brainpair/backend/internal/transport/http/errors"
)

type StreakHandler struct {
	service *streaksvc.Service
}

func NewStreakHandler(service *streaksvc.Service) *StreakHandler {
	return &StreakHandler{service: service}
}

func (h *StreakHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STREAK_SERVICE_UNAVAILABLE", "streak service is unavailable")
		return
	}

	result, err := h.service.Load(r.Context(), identity.UserID, timezoneFromRequest(r))
	if err != nil {
		writeStreakError(w, err, "failed to load streak")
		return
	}

	httperrors.Write(w, http.StatusOK, streakResponse(result))
}

func (h *StreakHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STREAK_SERVICE_UNAVAILABLE", "streak service is unavailable")
		return
	}

	result, err := h.service.RecordActivity(r.Context(), identity.UserID, timezoneFromRequest(r))
	if err != nil {
		writeStreakError(w, err, "failed to record study activity")
		return
	}

	httperrors.Write(w, http.StatusOK, streakResponse(result))
}

func (h *StreakHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STREAK_SERVICE_UNAVAILABLE", "streak service is unavailable")
		return
	}

	from, err := parseOptionalDay(r.URL.Query().Get("from"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "from must be YYYY-MM-DD")
		return
	}
	to, err := parseOptionalDay(r.URL.Query().Get("to"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "to must be YYYY-MM-DD")
		return
	}

	result, err := h.service.Calendar(r.Context(), identity.UserID, from, to, timezoneFromRequest(r))
	if err != nil {
		writeStreakError(w, err, "failed to load streak calendar")
		return
	}

	dates := make([]string, 0, len(result.Dates))
	for _, d := range result.Dates {
		dates = append(dates, rules.DayKey(d, time.UTC))
	}

	httperrors.Write(w, http.StatusOK, dto.StreakCalendarResponse{
		From:   rules.DayKey(result.From, time.UTC),
		To:     rules.DayKey(result.To, time.UTC),
		Dates:  dates,
		Streak: result.Streak,
	})
}

func writeStreakError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, streaksvc.ErrValidation) {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid streak request")
		return
	}
	writeInternal(w, "INTERNAL_ERROR", message)
}

func streakResponse(result streaksvc.Result) dto.StreakResponse {
	resp := dto.StreakResponse{
		Current: result.State.Current,
		Longest: result.State.Longest,
		Outcome: string(result.Change.Outcome),
		Message: streakMessage(result),
	}
	if result.State.LastActiveDate != nil {
		day := rules.DayKey(*result.State.LastActiveDate, time.UTC)
		resp.LastActiveDate = &day
	}
	return resp
}

func streakMessage(result streaksvc.Result) string {
	prior := result.Change.PriorStreak
	switch result.Change.Outcome {
	case enums.StreakStarted:
		return "Study streak started!"
	case enums.StreakContinued:
		return "Study streak continued!"
	case enums.StreakAlreadyRecorded:
		return "Study streak already recorded for today."
	case enums.StreakReset:
		if prior > 0 {
			return fmt.Sprintf("Your %d-day streak has ended. Start a new one!", prior)
		}
		return "Study streak started!"
	case enums.StreakExpired:
		if prior > 0 {
			return fmt.Sprintf("Your %d-day streak has ended :(", prior)
		}
	}
	return ""
}

func parseOptionalDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return rules.ParseDayKey(raw)
}
