package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
	streaksvc "github.com/brainpair/backend/internal/services/streaks"
)

type streakBody struct {
	Current        int     `json:"current"`
	Longest        int     `json:"longest"`
	LastActiveDate *string `json:"last_active_date"`
	Outcome        string  `json:"outcome"`
	Message        string  `json:"message"`
	Code           string  `json:"code"`
}

func newStreakHandler(store *memoryStreaks) *StreakHandler {
	return NewStreakHandler(streaksvc.NewService(streaksvc.Dependencies{
		Store:    store,
		TxRunner: noTx,
	}, streaksvc.Config{}))
}

func TestStreakHandlerRecordActivity(t *testing.T) {
	h := newStreakHandler(newMemoryStreaks())

	rec := httptest.NewRecorder()
	h.RecordActivity(rec, newAuthedRequest(t, http.MethodPost, "/streak/activity", "u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var first streakBody
	decodeBody(t, rec, &first)
	if first.Current != 1 || first.Longest != 1 || first.Outcome != "started" || first.LastActiveDate == nil || first.Message != "Study streak started!" {
		t.Fatalf("unexpected first response: %+v", first)
	}

	rec = httptest.NewRecorder()
	h.RecordActivity(rec, newAuthedRequest(t, http.MethodPost, "/streak/activity", "u1", nil))
	var second streakBody
	decodeBody(t, rec, &second)
	if second.Outcome != "already_recorded" || second.Current != 1 {
		t.Fatalf("unexpected second response: %+v", second)
	}
	if second.Message != "Study streak already recorded for today." {
		t.Fatalf("unexpected message %q", second.Message)
	}
}

func TestStreakHandlerExpiredMessage(t *testing.T) {
	store := newMemoryStreaks()
	last := time.Now().UTC().AddDate(0, 0, -5)
	last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	store.states["u1"] = model.StreakState{UserID: "u1", Current: 4, Longest: 4, LastActiveDate: &last}
	h := newStreakHandler(store)

	rec := httptest.NewRecorder()
	h.Get(rec, newAuthedRequest(t, http.MethodGet, "/streak", "u1", nil))
	var body streakBody
	decodeBody(t, rec, &body)
	if body.Current != 0 || body.Longest != 4 || body.LastActiveDate != nil || body.Outcome != "expired" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Message != "Your 4-day streak has ended :(" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestStreakHandlerCalendar(t *testing.T) {
	h := newStreakHandler(newMemoryStreaks())

	rec := httptest.NewRecorder()
	h.RecordActivity(rec, newAuthedRequest(t, http.MethodPost, "/streak/activity", "u1", nil))

	rec = httptest.NewRecorder()
	h.Calendar(rec, newAuthedRequest(t, http.MethodGet, "/streak/calendar", "u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		Dates  []string `json:"dates"`
		Streak int      `json:"streak"`
	}
	decodeBody(t, rec, &body)
	if len(body.Dates) != 1 || body.Streak != 1 {
		t.Fatalf("unexpected calendar: %+v", body)
	}

	rec = httptest.NewRecorder()
	h.Calendar(rec, newAuthedRequest(t, http.MethodGet, "/streak/calendar?from=yesterday", "u1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Calendar(rec, newAuthedRequest(t, http.MethodGet, "/streak/calendar?from=2026-05-01&to=2026-04-01", "u1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rec.Code)
	}
}

func TestStreakMessage(t *testing.T) {
	tests := []struct {
		name   string
		result streaksvc.Result
		want   string
	}{
		{name: "reset", result: resultWith("reset", 5), want: "Your 5-day streak has ended. Start a new one!"},
		{name: "reset from zero", result: resultWith("reset", 0), want: "Study streak started!"},
		{name: "started", result: resultWith("started", 0), want: "Study streak started!"},
		{name: "continued", result: resultWith("continued", 2), want: "Study streak continued!"},
		{name: "already recorded", result: resultWith("already_recorded", 0), want: "Study streak already recorded for today."},
		{name: "unchanged", result: resultWith("unchanged", 4), want: ""},
		{name: "expired", result: resultWith("expired", 3), want: "Your 3-day streak has ended :("},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := streakMessage(tc.result); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func resultWith(outcome string, prior int) streaksvc.Result {
	var res streaksvc.Result
	res.Change.Outcome = enums.StreakOutcome(outcome)
	res.Change.PriorStreak = prior
	return res
}
