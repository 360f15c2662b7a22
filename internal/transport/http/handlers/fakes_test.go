package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
	"github.com/brainpair/backend/internal/domain/rules"
	authsvc "github.com/brainpair/backend/internal/services/auth"
)

type memorySwipes struct {
	mu      sync.Mutex
	records map[string]model.SwipeRecord
}

func newMemorySwipes() *memorySwipes {
	return &memorySwipes{records: map[string]model.SwipeRecord{}}
}

func (s *memorySwipes) Merge(_ context.Context, userID, targetID string, direction enums.SwipeDirection, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[userID] == nil {
		s.records[userID] = model.SwipeRecord{}
	}
	s.records[userID][targetID] = direction
	return nil
}

func (s *memorySwipes) Record(_ context.Context, userID string) (model.SwipeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.SwipeRecord{}
	for k, v := range s.records[userID] {
		out[k] = v
	}
	return out, nil
}

type memoryMatches struct {
	mu      sync.Mutex
	matches map[string]model.Match
}

func newMemoryMatches() *memoryMatches {
	return &memoryMatches{matches: map[string]model.Match{}}
}

func (s *memoryMatches) Create(_ context.Context, userA, userB string, now time.Time) (model.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := rules.PairID(userA, userB)
	if existing, ok := s.matches[id]; ok {
		return existing, false, nil
	}
	users := [2]string{userA, userB}
	if users[1] < users[0] {
		users[0], users[1] = users[1], users[0]
	}
	m := model.Match{ID: id, Users: users, CreatedAt: now}
	s.matches[id] = m
	return m, true, nil
}

func (s *memoryMatches) Exists(_ context.Context, matchID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.matches[matchID]
	return ok, nil
}

func (s *memoryMatches) ListForUser(_ context.Context, userID string, _ int) ([]model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Match{}
	for _, m := range s.matches {
		if m.Users[0] == userID || m.Users[1] == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryMatches) Delete(_ context.Context, matchID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.matches[matchID]
	delete(s.matches, matchID)
	return ok, nil
}

type memoryStreaks struct {
	states map[string]model.StreakState
	dates  map[string][]time.Time
}

func newMemoryStreaks() *memoryStreaks {
	return &memoryStreaks{states: map[string]model.StreakState{}, dates: map[string][]time.Time{}}
}

func (s *memoryStreaks) GetForUpdate(_ context.Context, _ pgx.Tx, userID string) (model.StreakState, error) {
	state, ok := s.states[userID]
	if !ok {
		return model.StreakState{UserID: userID}, nil
	}
	return state.Clone(), nil
}

func (s *memoryStreaks) Save(_ context.Context, _ pgx.Tx, state model.StreakState) error {
	s.states[state.UserID] = state.Clone()
	if state.LastActiveDate != nil {
		s.dates[state.UserID] = append(s.dates[state.UserID], *state.LastActiveDate)
	}
	return nil
}

func (s *memoryStreaks) ListActivityDates(_ context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	out := []time.Time{}
	for _, d := range s.dates[userID] {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func noTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

func newAuthedRequest(t *testing.T, method, target, userID string, body any) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID}))
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
